package edit

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// BatchItem is the outcome of one file of a batch
type BatchItem struct {
	Index  int // 1-based
	Total  int
	Input  string
	Output string
	Err    error
}

// BatchResult counts the outcomes of a batch
type BatchResult struct {
	OK     int
	Failed int
}

// Batch applies op to every file in order. Outputs go to outDir, or next
// to each source when outDir is empty. A failing file is counted and the
// batch continues; onItem, when non-nil, is called before and after each
// file (Output and Err are set on the second call).
func (s *Service) Batch(ctx context.Context, op model.EditOperation, params model.EditParams, files []string, outDir string, onItem func(BatchItem, bool)) (BatchResult, error) {
	var res BatchResult
	if op == model.EditMerge {
		return res, goerr.New("merge cannot run as a batch", goerr.T(model.ErrTagValidation))
	}
	if len(files) == 0 {
		return res, goerr.New("no input files", goerr.T(model.ErrTagValidation))
	}
	if outDir != "" {
		if err := platform.CreateDirectoryIfNotExists(outDir); err != nil {
			return res, err
		}
	}
	if onItem == nil {
		onItem = func(BatchItem, bool) {}
	}

	for i, in := range files {
		item := BatchItem{Index: i + 1, Total: len(files), Input: in}
		if ctx.Err() != nil {
			item.Err = goerr.Wrap(ctx.Err(), "batch cancelled")
			res.Failed++
			onItem(item, true)
			continue
		}
		onItem(item, false)

		req := model.EditRequest{
			Operation: op,
			Inputs:    []string{in},
			Output:    DeriveOutput(op, params, in, outDir),
			Params:    params,
		}
		item.Output, item.Err = s.Apply(ctx, req, nil)
		if item.Err != nil {
			res.Failed++
			ctxlog.From(ctx).Warn("batch item failed", slog.String("input", in), slog.Any("error", item.Err))
		} else {
			res.OK++
		}
		onItem(item, true)
	}
	return res, nil
}
