package ports

import "context"

type ctxKey string

const CtxImportJobID ctxKey = "import_job_id"

type Processor interface {
	Type() string
	ProcessBatch(ctx context.Context, batch []map[string]string) error
}
