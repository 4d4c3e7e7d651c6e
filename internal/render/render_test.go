package render

import (
	"bytes"
	"testing"
	"time"

	"kebutuhan-pln/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() *model.DeliveryNoteView {
	return &model.DeliveryNoteView{
		OrderID:     "ORD-1",
		Number:      "007/MUM/UPTBGOR/05/2025",
		Purpose:     "Pemeliharaan GI Cibinong",
		Destination: "ULP Bogor Kota",
		Driver:      "Budi",
		Receiver:    "PT Sinar & Jaya",
		Date:        time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		DateLine:    "Bogor, 02 Mei 2025",
		Rows: []model.DeliveryNoteRow{
			{No: 1, ProductName: "Kabel NYY 4x16", Category: "Material", ApprovedQuantity: 5, Notes: "<b>segera</b>"},
		},
	}
}

func TestRenderer_DeliveryNote(t *testing.T) {
	r, err := New(Letterhead{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.DeliveryNote(&buf, sampleView()))
	out := buf.String()

	assert.Contains(t, out, "SURAT JALAN")
	assert.Contains(t, out, "NO : 007/MUM/UPTBGOR/05/2025")
	assert.Contains(t, out, DefaultLetterhead.Company)
	assert.Contains(t, out, "Bogor, 02 Mei 2025")
	assert.Contains(t, out, "Kabel NYY 4x16")
	assert.Contains(t, out, "PT Sinar &amp; Jaya")
	assert.Contains(t, out, "&lt;b&gt;segera&lt;/b&gt;")
	assert.NotContains(t, out, "<b>segera</b>")
	// Empty fields print a dash.
	assert.Contains(t, out, "<span>Kendaraan</span><span>: -</span>")
}

func TestRenderer_DeliveryNote_NoRows(t *testing.T) {
	r, err := New(Letterhead{Company: "PT. PLN (PERSERO)", Unit: "UPT CIBINONG"})
	require.NoError(t, err)

	view := sampleView()
	view.Rows = nil

	var buf bytes.Buffer
	require.NoError(t, r.DeliveryNote(&buf, view))

	assert.Contains(t, buf.String(), "Tidak ada barang yang disetujui")
	assert.Contains(t, buf.String(), "UPT CIBINONG")
}
