// Command s3drop uploads a single local file to an S3 bucket as a CI
// pipeline step, optionally publishing a QR code image of the resulting
// access URL, and reports the URLs back through the pipeline's outputs.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	blobs3 "s3drop/internal/blob/s3"
	"s3drop/internal/config"
	"s3drop/internal/qr"
	"s3drop/internal/step"
	"s3drop/internal/uploader"
)

var exitFunc = os.Exit

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], logger); err != nil {
		step.Fail(err.Error())
		if oerr := step.SetOutput(step.OutputResult, step.ResultFailure); oerr != nil {
			logger.Error("report failure result", "error", oerr)
		}
		exitFunc(1)
		return
	}
	exitFunc(0)
}

func run(args []string, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("s3drop", pflag.ContinueOnError)
	profileFlag := fs.String("profile", "", "execution profile override (local|pipeline)")
	fs.String("file-path", "", "source file to upload")
	fs.String("bucket", "", "destination bucket")
	fs.String("region", "", "bucket region")
	fs.String("destination-dir", "", "destination directory under the bucket root")
	fs.String("bucket-root", "", "key prefix applied to all uploads")
	fs.Bool("public", false, "make the uploaded file publicly readable")
	fs.Bool("qr", false, "also upload a QR code of the file URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile := config.DetectProfile()
	if *profileFlag != "" {
		p, err := config.ParseProfile(*profileFlag)
		if err != nil {
			return err
		}
		profile = p
	}

	cfg, err := config.Load(profile, fs)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		"profile", string(profile), "bucket", cfg.Bucket, "region", cfg.Region, "key", cfg.ObjectKey())

	ctx := context.Background()
	store, err := blobs3.New(ctx, blobs3.Config{
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		SessionToken:    cfg.SessionToken,
		Endpoint:        cfg.Endpoint,
		PathStyle:       cfg.PathStyle,
	})
	if err != nil {
		return err
	}

	res, err := uploader.Run(ctx, cfg, store, qr.PNGEncoder{}, logger)
	if err != nil {
		return err
	}

	if cfg.OutputFileURL {
		if err := step.SetOutput(step.OutputFileURL, res.FileURL); err != nil {
			return err
		}
	}
	if cfg.QR && cfg.OutputQRURL {
		if err := step.SetOutput(step.OutputQRURL, res.QRURL); err != nil {
			return err
		}
	}
	return step.SetOutput(step.OutputResult, step.ResultSuccess)
}
