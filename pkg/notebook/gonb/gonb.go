// Package gonb connects notebook sessions to the gonb Go Jupyter kernel.
package gonb

import (
	"github.com/charmbracelet/log"
	"github.com/janpfeifer/gonb/gonbui"

	"github.com/matzehuels/offlineplot/pkg/bundle"
	"github.com/matzehuels/offlineplot/pkg/notebook"
)

// Display writes to the output of the gonb cell being executed.
type Display struct{}

var _ notebook.Display = Display{}

// Available reports whether the program runs under gonb.
func (Display) Available() bool { return gonbui.IsNotebook }

// DisplayHTML sends html to the cell output. gonbui reports delivery
// failures to the kernel, not to the caller.
func (Display) DisplayHTML(html string) error {
	gonbui.DisplayHtml(html)
	return nil
}

// NewSession returns a session bound to the gonb kernel.
func NewSession(library bundle.Source, logger *log.Logger) *notebook.Session {
	return notebook.NewSession(Display{}, library, logger)
}
