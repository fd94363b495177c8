package processors

import (
	"context"

	"accreditations/internal/ports"
)

// NoopProcessor accepts and drops rows; used for dry runs.
type NoopProcessor struct{}

func (NoopProcessor) Type() string { return "noop" }

func (NoopProcessor) ProcessBatch(ctx context.Context, batch []map[string]string) error {
	return nil
}

func DefaultRegistry() map[string]ports.Processor {
	return map[string]ports.Processor{
		"noop": NoopProcessor{},
	}
}

// Registry returns the default processors plus rp under its type.
func Registry(rp *RecordsProcessor) map[string]ports.Processor {
	reg := DefaultRegistry()
	reg[rp.Type()] = rp
	return reg
}
