package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/shouni/nano-banana-studio/pkg/session"
	"github.com/shouni/nano-banana-studio/pkg/utils"
)

// NewEditCommand returns the edit subcommand.
func NewEditCommand() *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "Edit a single image and save the result as PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "image",
				Aliases:  []string{"i"},
				Usage:    "Source image (local path, http(s) URL or gs:// URI)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "prompt",
				Aliases:  []string{"p"},
				Usage:    "Edit instruction",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (default: nano-banana-edit-<unix-ms>.png)",
			},
		},
		Action: runEdit,
	}
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	editor, err := newEditor(ctx, cfg)
	if err != nil {
		return err
	}

	src := cmd.String("image")
	loader, closeLoader, err := newLoader(ctx, cfg, src)
	if err != nil {
		return fmt.Errorf("init loader: %w", err)
	}
	defer closeLoader()

	file, err := loader.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	sess, err := session.New(editor, newEncoder(cfg))
	if err != nil {
		return err
	}
	if err := sess.SelectFile(ctx, file); err != nil {
		return err
	}
	sess.SetPrompt(cmd.String("prompt"))

	slog.InfoContext(ctx, "画像を編集しています", "image", file.Name, "model", editor.Model())
	res, err := sess.Submit(ctx)
	if err != nil {
		return err
	}

	_, data, err := utils.DecodeDataURI(res.DataURI)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	out := cmd.String("out")
	if out == "" {
		out = res.DownloadName()
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	fmt.Fprintln(cmd.Root().Writer, out)
	return nil
}
