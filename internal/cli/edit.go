package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/ytget/clipforge/internal/edit"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// DefaultOpacity keeps the logo fully opaque
const DefaultOpacity = 1.0

// editFlags holds the operation parameters shared by edit and batch
type editFlags struct {
	Width, Height int
	X, Y          int
	Start, End    string
	Format        string
	Speed         float64
	Rotation      string
	Logo          string
	Position      string
	LogoX, LogoY  string
	LogoScale     int
	Opacity       float64
}

// Flags returns CLI flags for edit parameters
func (f *editFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "width", Usage: "Target width (resize, crop); -1 keeps aspect on resize", Destination: &f.Width},
		&cli.IntFlag{Name: "height", Usage: "Target height (resize, crop); -1 keeps aspect on resize", Destination: &f.Height},
		&cli.IntFlag{Name: "x", Usage: "Crop left offset", Destination: &f.X},
		&cli.IntFlag{Name: "y", Usage: "Crop top offset", Destination: &f.Y},
		&cli.StringFlag{Name: "start", Usage: "Trim start (HH:MM:SS)", Destination: &f.Start},
		&cli.StringFlag{Name: "end", Usage: "Trim end (HH:MM:SS)", Destination: &f.End},
		&cli.StringFlag{Name: "format", Usage: "Target format (convert, extract-audio)", Destination: &f.Format},
		&cli.FloatFlag{Name: "speed", Usage: "Playback speed factor", Destination: &f.Speed},
		&cli.StringFlag{Name: "rotation", Usage: "Rotation (cw90, ccw90, 180, hflip, vflip)", Value: string(model.RotateCW90), Destination: &f.Rotation},
		&cli.StringFlag{Name: "logo", Usage: "Logo image (logo)", Destination: &f.Logo},
		&cli.StringFlag{Name: "position", Usage: "Logo position (top-left, top-right, bottom-left, bottom-right, center, custom)", Value: string(model.LogoBottomRight), Destination: &f.Position},
		&cli.StringFlag{Name: "logo-x", Usage: "Logo x expression for custom position", Destination: &f.LogoX},
		&cli.StringFlag{Name: "logo-y", Usage: "Logo y expression for custom position", Destination: &f.LogoY},
		&cli.IntFlag{Name: "logo-scale", Usage: "Logo width in pixels (0 keeps the image size)", Destination: &f.LogoScale},
		&cli.FloatFlag{Name: "opacity", Usage: "Logo opacity in [0,1]", Value: DefaultOpacity, Destination: &f.Opacity},
	}
}

// Params converts the flags to edit parameters
func (f *editFlags) Params() model.EditParams {
	return model.EditParams{
		Width:        f.Width,
		Height:       f.Height,
		X:            f.X,
		Y:            f.Y,
		Start:        f.Start,
		End:          f.End,
		Format:       strings.TrimPrefix(f.Format, "."),
		Speed:        f.Speed,
		Rotation:     model.Rotation(f.Rotation),
		LogoPath:     f.Logo,
		LogoPosition: model.LogoPosition(f.Position),
		LogoX:        f.LogoX,
		LogoY:        f.LogoY,
		LogoScale:    f.LogoScale,
		Opacity:      f.Opacity,
	}
}

func operationUsage() string {
	ops := model.EditOperations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}

func (a *app) cmdEdit() *cli.Command {
	var (
		f      editFlags
		output string
	)

	flags := append(f.Flags(), &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "Output file (derived from the input name when empty)",
		Destination: &output,
	})

	return &cli.Command{
		Name:      "edit",
		Usage:     "Apply one edit operation (" + operationUsage() + ")",
		ArgsUsage: "OPERATION INPUT...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return goerr.New("edit needs an operation and at least one input", goerr.T(model.ErrTagValidation))
			}
			op, err := model.ParseEditOperation(c.Args().First())
			if err != nil {
				return err
			}

			req := model.EditRequest{
				Operation: op,
				Inputs:    c.Args().Tail(),
				Output:    output,
				Params:    f.Params(),
			}
			return a.edit(ctx, req)
		},
	}
}

// edit validates req, then runs it as one activity
func (a *app) edit(ctx context.Context, req model.EditRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return a.runActivity(ctx, func(ctx context.Context, s *session) error {
		svc := a.newEditService(a.settings)
		s.Log(ctx, model.LevelInfo, s.tag("start edit | op=%s | inputs=%d", req.Operation, len(req.Inputs)))

		out, err := svc.Apply(ctx, req, func(f float64) { s.Progress(ctx, f) })
		if err != nil {
			s.Log(ctx, model.LevelErr, fmt.Sprintf("Failed: %v", err))
			return err
		}
		s.Log(ctx, model.LevelOK, "Done: "+out)
		return nil
	})
}

func (a *app) cmdBatch() *cli.Command {
	var (
		f      editFlags
		outDir string
	)

	flags := append(f.Flags(), &cli.StringFlag{
		Name:        "out",
		Aliases:     []string{"o"},
		Usage:       "Output directory (next to each source when empty)",
		Destination: &outDir,
	})

	return &cli.Command{
		Name:      "batch",
		Usage:     "Apply one edit operation to many files in order",
		ArgsUsage: "OPERATION FILE...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return goerr.New("batch needs an operation and at least one file", goerr.T(model.ErrTagValidation))
			}
			op, err := model.ParseEditOperation(c.Args().First())
			if err != nil {
				return err
			}
			return a.batch(ctx, op, f.Params(), c.Args().Tail(), outDir)
		},
	}
}

// batch checks the parameters against the first file, then runs the whole
// batch as one activity
func (a *app) batch(ctx context.Context, op model.EditOperation, params model.EditParams, files []string, outDir string) error {
	if op == model.EditMerge {
		return goerr.New("merge cannot run as a batch", goerr.T(model.ErrTagValidation))
	}
	probe := model.EditRequest{Operation: op, Inputs: files[:1], Params: params}
	if err := probe.Validate(); err != nil {
		return err
	}

	return a.runActivity(ctx, func(ctx context.Context, s *session) error {
		svc := a.newEditService(a.settings)
		s.Log(ctx, model.LevelInfo, s.tag("start batch | op=%s | files=%d", op, len(files)))
		if outDir != "" {
			s.Log(ctx, model.LevelInfo, s.tag("Output: %s", outDir))
		}

		res, err := svc.Batch(ctx, op, params, files, outDir, func(item edit.BatchItem, done bool) {
			if !done {
				s.Log(ctx, model.LevelInfo, fmt.Sprintf("[%d/%d] %s", item.Index, item.Total, filepath.Base(item.Input)))
				s.Progress(ctx, float64(item.Index-1)/float64(item.Total))
				return
			}
			if item.Err != nil {
				s.Log(ctx, model.LevelErr, fmt.Sprintf("Failed: %s: %v", filepath.Base(item.Input), item.Err))
				return
			}
			s.Log(ctx, model.LevelOK, "Done: "+filepath.Base(item.Output))
		})
		if err != nil {
			s.Log(ctx, model.LevelErr, fmt.Sprintf("Failed: %v", err))
			return err
		}

		s.Progress(ctx, 1)
		level := model.LevelOK
		if res.Failed > 0 {
			level = model.LevelErr
		}
		s.Log(ctx, level, fmt.Sprintf("Batch finished: %d ok, %d failed.", res.OK, res.Failed))
		if res.OK == 0 {
			return goerr.New("every batch item failed", goerr.V("failed", res.Failed))
		}
		return nil
	})
}

// cmdDuration prints the duration of a media file
func (a *app) cmdDuration() *cli.Command {
	return &cli.Command{
		Name:      "duration",
		Usage:     "Print the duration of a media file",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("duration needs exactly one file", goerr.T(model.ErrTagValidation))
			}
			path := c.Args().First()
			d, err := a.newEditService(a.settings).Duration(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s\t%s (%.2fs)\n", path, platform.FormatDuration(d), d)
			return nil
		},
	}
}
