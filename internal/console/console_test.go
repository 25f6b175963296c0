package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewWriter(&buf)

	p.Plain("Found: %s -> %s", "Temerity", "4044736160")
	p.Success("Extracted %d items", 1)
	p.Skip("Already exists: %s", "pamir-ai.pamir-welcome")
	p.Fail("File %s not found", "guide.html")

	assert.Equal(t, "Found: Temerity -> 4044736160\n"+
		"✓ Extracted 1 items\n"+
		"⊙ Already exists: pamir-ai.pamir-welcome\n"+
		"✗ File guide.html not found\n", buf.String())
}

func TestPaintColors(t *testing.T) {
	p := &Printer{color: true}
	assert.Equal(t, "\033[32mok\033[0m", p.paint(colorGreen, "ok"))
}
