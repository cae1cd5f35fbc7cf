package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/trezcool/ratiba/core"
)

func (cli *commandLine) upload(kind, path, notes string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	up, err := cli.uploads.Upload(context.Background(), kind, filepath.Base(path), f, notes)
	if err != nil {
		return err
	}
	cli.printf("Uploaded %s as %s (id %s)\n", up.Filename, up.Type, up.ID)
	return nil
}

func (cli *commandLine) listUploads(kind string) error {
	list, err := cli.uploads.List(context.Background(), kind)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		cli.printf("No documents uploaded.\n")
		return nil
	}
	for _, up := range list {
		cli.printf("[%s] %s (%s) uploaded %s", up.ID, up.Filename, up.Type, up.UploadedAt.Format("Jan 2, 2006"))
		if up.Notes.Valid {
			cli.printf(": %s", up.Notes.String)
		}
		cli.printf("\n")
	}
	return nil
}

func (cli *commandLine) removeUpload(id core.ID) error {
	if err := cli.uploads.Delete(context.Background(), id); err != nil {
		return err
	}
	cli.printf("Removed upload %s\n", id)
	return nil
}
