package printer

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDocumentAlignsWithSpaces(t *testing.T) {
	doc := NewTextDocument(20)
	doc.SetAlign(AlignCenter).SetBold(true).Text("SHOP").
		SetAlign(AlignRight).Text("right").
		SetAlign(AlignLeft).KeyValue("Total:", "9.99").
		ItemLine(2, "a very long product name", "1.00").
		PartialCut()

	want := "        SHOP\n" +
		"               right\n" +
		"Total:          9.99\n" +
		"2x a very long  1.00\n"
	assert.Equal(t, want, doc.String())
}

func TestEscposDocumentEmitsCommands(t *testing.T) {
	doc := NewDocument(0)
	assert.Equal(t, Width58mm, doc.Width())
	doc.SetBold(true).Text("x").Cut()
	assert.Equal(t, []byte{ESC, '@', ESC, 'E', 1, 'x', LF, GS, 'V', 0}, doc.Bytes())

	doc.Reset()
	assert.Equal(t, []byte{ESC, '@'}, doc.Bytes())
}

func TestNewSelectsPrinter(t *testing.T) {
	p, err := New(Options{Type: "none"})
	require.NoError(t, err)
	assert.False(t, p.IsConnected())
	assert.NoError(t, p.Print([]byte("x")))

	_, err = New(Options{Type: "usb"})
	assert.Error(t, err)
	_, err = New(Options{Type: "network"})
	assert.Error(t, err)
	_, err = New(Options{Type: "serial"})
	assert.Error(t, err)
}

func TestUSBPrinterWritesDeviceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	p, err := New(Options{Type: "usb", USBPath: path})
	require.NoError(t, err)
	assert.True(t, p.IsConnected())
	require.NoError(t, p.Print([]byte("receipt")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(got))
}

func TestNetworkPrinterSendsJob(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- buf[:n]
	}()

	p, err := New(Options{Type: "network", Address: ln.Addr().String()})
	require.NoError(t, err)
	require.NoError(t, p.Print([]byte("job")))
	assert.Equal(t, "job", string(<-received))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Print([]byte("one")))
	assert.Len(t, r.Jobs(), 1)

	r.Err = assert.AnError
	assert.ErrorIs(t, r.Print([]byte("two")), assert.AnError)
	assert.Len(t, r.Jobs(), 1)
}
