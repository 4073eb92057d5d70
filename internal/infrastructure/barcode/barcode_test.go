package barcode_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/barcode"
)

func TestCode128_IdaYVuelta(t *testing.T) {
	gen := barcode.NewGenerator()
	data, err := gen.Code128PNG("8412345678905")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 100)

	text, format, err := barcode.NewDecoder().DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, "8412345678905", text)
	assert.Equal(t, "CODE_128", format)
}

func TestQR_IdaYVuelta(t *testing.T) {
	gen := barcode.NewGenerator()
	data, err := gen.QRPNG("http://192.168.1.20:5050/movil?token=abc", 256)
	require.NoError(t, err)

	text, format, err := barcode.NewDecoder().DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:5050/movil?token=abc", text)
	assert.Equal(t, "QR_CODE", format)
}

func TestQRTerminal(t *testing.T) {
	s, err := barcode.NewGenerator().QRTerminal("hola")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	require.NotEmpty(t, lines)
	w := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, w, len([]rune(l)), "todas las líneas tienen el mismo ancho")
	}
}

func TestDecode_ImagenInvalida(t *testing.T) {
	_, _, err := barcode.NewDecoder().DecodeImage([]byte("no es una imagen"))
	assert.Error(t, err)
}

func TestDecode_SinCodigo(t *testing.T) {
	var buf bytes.Buffer
	blank, err := barcode.NewGenerator().Code128PNG("X")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(blank))
	require.NoError(t, err)
	// Sólo la esquina blanca de la etiqueta.
	sub := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}).SubImage(image.Rect(0, 0, 20, 20))
	require.NoError(t, png.Encode(&buf, sub))

	_, _, err = barcode.NewDecoder().DecodeImage(buf.Bytes())
	assert.ErrorIs(t, err, barcode.ErrNoBarcode)
}

// Un único decodificador atiende a varios móviles a la vez.
func TestDecode_Concurrente(t *testing.T) {
	gen := barcode.NewGenerator()
	ean, err := gen.Code128PNG("8412345678905")
	require.NoError(t, err)
	qr, err := gen.QRPNG("http://192.168.1.20:5050/movil", 256)
	require.NoError(t, err)

	dec := barcode.NewDecoder()
	cases := []struct {
		data []byte
		want string
	}{
		{ean, "8412345678905"},
		{qr, "http://192.168.1.20:5050/movil"},
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		tc := cases[i%len(cases)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				text, _, err := dec.DecodeImage(tc.data)
				if err != nil || text != tc.want {
					errs <- text
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	assert.Empty(t, errs, "lecturas erróneas")
}

// pngWithSize PNG de 1x1 cuya cabecera declara w x h.
func pngWithSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	b := buf.Bytes()
	// firma (8) + longitud (4) + "IHDR" (4) + datos (13) + crc (4)
	binary.BigEndian.PutUint32(b[16:20], w)
	binary.BigEndian.PutUint32(b[20:24], h)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestDecode_ResolucionExcesiva(t *testing.T) {
	_, _, err := barcode.NewDecoder().DecodeImage(pngWithSize(t, 10000, 10000))
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)
}
