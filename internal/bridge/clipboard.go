package bridge

import (
	"strings"

	"github.com/atotto/clipboard"
)

// systemClipboard answers the engine's clipboard provider with the
// host system clipboard. The + and * registers both map to the one
// system clipboard; Get and Set run on rpc handler goroutines.
type systemClipboard struct{}

func (systemClipboard) Get(reg string) ([]string, string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, "", err
	}
	regtype := "v"
	if strings.HasSuffix(text, "\n") {
		regtype = "V"
		text = strings.TrimSuffix(text, "\n")
	}
	return strings.Split(text, "\n"), regtype, nil
}

func (systemClipboard) Set(lines []string, regtype, reg string) error {
	text := strings.Join(lines, "\n")
	if regtype == "V" {
		text += "\n"
	}
	return clipboard.WriteAll(text)
}
