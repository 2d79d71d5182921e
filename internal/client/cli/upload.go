package cli

import (
	"context"
	"fmt"
)

func (a *App) upload(ctx context.Context, args []string) error {
	fs := newFlagSet("upload")
	description := fs.String("description", "", "archive description (default: file name)")
	abort := fs.Bool("abort-on-failure", false, "abort the upload on the first failed part")

	pos, err := parse(fs, args, "vault", "file")
	if err != nil {
		return err
	}
	vault, src := pos[0], pos[1]

	svc := a.uploads
	if *abort && a.abortingUploads != nil {
		svc = a.abortingUploads()
	}

	receipt, err := svc.UploadFile(ctx, src, vault, *description)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "archive id: %s\nchecksum:   %s\n", receipt.ArchiveID, receipt.Checksum)
	return nil
}
