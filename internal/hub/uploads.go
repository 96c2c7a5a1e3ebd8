package hub

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadSignature uploads a detached signature for the collection version
// identified by signedCollection (its pulp_href) into repositoryHref.
func (c *Client) UploadSignature(ctx context.Context, r io.Reader, filename, repositoryHref, signedCollection string) (*TaskRef, error) {
	u := c.pulpURL("content", "ansible", "collection_signatures")
	fields := map[string]string{
		"repository":        repositoryHref,
		"signed_collection": signedCollection,
	}
	var ref TaskRef
	if err := c.postMultipart(ctx, u, fields, filename, r, nil, &ref); err != nil {
		return nil, fmt.Errorf("upload signature %q: %w", filename, err)
	}
	return &ref, nil
}

// UploadCollection uploads a collection tarball. digest is optional: it is
// called once the file part has been written, so a hashing reader can supply
// the sha256 of the bytes actually sent, and the hub verifies the artifact
// against a non-empty result. Cancelling ctx aborts the transfer.
func (c *Client) UploadCollection(ctx context.Context, r io.Reader, filename string, digest func() string) (*TaskRef, error) {
	u := c.url("v3", "artifacts", "collections")
	var trailer func() map[string]string
	if digest != nil {
		trailer = func() map[string]string {
			if sum := digest(); sum != "" {
				return map[string]string{"sha256": sum}
			}
			return nil
		}
	}
	var ref TaskRef
	if err := c.postMultipart(ctx, u, nil, filename, r, trailer, &ref); err != nil {
		return nil, fmt.Errorf("upload collection %q: %w", filename, err)
	}
	return &ref, nil
}

// postMultipart streams a multipart/form-data body with one "file" part.
// Fields go before the file; trailer, when set, is evaluated after it.
func (c *Client) postMultipart(ctx context.Context, u string, fields map[string]string, filename string, r io.Reader, trailer func() map[string]string, out interface{}) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(mw, fields, filename, r, trailer)
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		_ = pr.Close()
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out != nil {
		if err := jsonDecode(resp.Body, out); err != nil {
			return NetworkError("decoding response", err)
		}
	}
	return nil
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, filename string, r io.Reader, trailer func() map[string]string) error {
	if err := writeFields(mw, fields); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	if trailer != nil {
		if err := writeFields(mw, trailer()); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFields(mw *multipart.Writer, fields map[string]string) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	return nil
}
