// Package uploader orchestrates a single upload invocation: read the source
// file, store it with derived access control and metadata, resolve its
// presented URL, and optionally publish a QR companion object.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"s3drop/internal/blob"
	"s3drop/internal/config"
	"s3drop/internal/qr"
	"s3drop/internal/tags"
)

// Result carries the URLs produced by a run.
type Result struct {
	FileURL string
	QRURL   string
}

// Run executes the step end to end. The first error aborts: there is no
// retry and no compensating delete of objects already uploaded.
func Run(ctx context.Context, cfg *config.Config, store blob.Store, enc qr.Encoder, log *slog.Logger) (Result, error) {
	data, err := os.ReadFile(cfg.SourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("read source file: %w", err)
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	acl := blob.ACLPrivate
	if cfg.Public {
		acl = blob.ACLPublicRead
	}

	key := cfg.ObjectKey()
	log.Info("uploading file",
		"bucket", cfg.Bucket, "key", key, "acl", string(acl),
		"content_type", contentType, "bytes", len(data))
	opts := blob.PutOptions{
		ContentType:        contentType,
		ContentDisposition: cfg.ContentDisposition,
		ACL:                acl,
		Tagging:            tags.Encode(tags.Parse(cfg.Tags)),
		ChecksumAlgorithm:  cfg.ChecksumAlgorithm,
		ChecksumValue:      cfg.ChecksumValue,
	}
	if err := store.Put(ctx, key, bytes.NewReader(data), opts); err != nil {
		return Result{}, err
	}

	fileURL, err := resolveFileURL(ctx, cfg, store, key)
	if err != nil {
		return Result{}, err
	}
	res := Result{FileURL: fileURL}

	if cfg.QR {
		qrURL, err := publishQR(ctx, cfg, store, enc, fileURL, log)
		if err != nil {
			return res, err
		}
		res.QRURL = qrURL
	}
	return res, nil
}

// resolveFileURL presents the uploaded file: a canonical public URL when the
// object is public, otherwise a signed URL with the exact configured expiry.
// A matching alternative domain, when set, replaces the canonical host.
func resolveFileURL(ctx context.Context, cfg *config.Config, store blob.Store, key string) (string, error) {
	loc := Location{Bucket: cfg.Bucket, Region: cfg.Region}
	if cfg.Public {
		return RewriteURL(store.PublicURL(key), loc, cfg.BucketRoot, cfg.PublicDomain), nil
	}
	signed, err := store.PresignGetURL(ctx, key, time.Duration(cfg.Expire)*time.Second)
	if err != nil {
		return "", err
	}
	return RewriteURL(signed, loc, cfg.BucketRoot, cfg.PrivateDomain), nil
}

// publishQR renders the access URL as a PNG and stores it beside the file.
// The QR object is always public regardless of the file's own visibility,
// and its URL always goes through the public alternative domain.
func publishQR(ctx context.Context, cfg *config.Config, store blob.Store, enc qr.Encoder, fileURL string, log *slog.Logger) (string, error) {
	png, err := enc.EncodePNG(fileURL, cfg.QRWidth)
	if err != nil {
		return "", err
	}
	key := cfg.QRObjectKey()
	log.Info("uploading qr code", "bucket", cfg.Bucket, "key", key, "width", cfg.QRWidth)
	opts := blob.PutOptions{
		ContentType: "image/png",
		ACL:         blob.ACLPublicRead,
	}
	if err := store.Put(ctx, key, bytes.NewReader(png), opts); err != nil {
		return "", err
	}
	loc := Location{Bucket: cfg.Bucket, Region: cfg.Region}
	return RewriteURL(store.PublicURL(key), loc, cfg.BucketRoot, cfg.PublicDomain), nil
}
