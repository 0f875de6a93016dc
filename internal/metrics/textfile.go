package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(reg prom.Gatherer, path string) error {
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return errors.IOError("write metrics file").WithCause(err).WithPath(path).Build()
	}
	return nil
}
