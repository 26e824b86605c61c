package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// ProgressFunc receives the upload progress as an integer percentage,
// monotonically non-decreasing from 0 to 100.
type ProgressFunc func(percent int)

// Upload transmits the selected asset to the ingestion endpoint as a single
// multipart request. Exactly one network transfer happens per invocation;
// there is no resumption and no automatic retry. The asset body is consumed
// even when the server rejects the upload.
//
// Cancelling ctx aborts the in-flight transfer.
func (c *Client) Upload(ctx context.Context, asset *SelectedAsset, title string, onProgress ProgressFunc) (*RemoteAsset, error) {
	if title == "" {
		title = asset.DefaultTitle()
	}

	body, contentType := multipartBody(asset, title, onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/supplier/videos", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUploadRejected, serverErrorMessage(resp.Body, resp.StatusCode))
	}

	var remote RemoteAsset
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return &remote, nil
}

// multipartBody streams the asset into a multipart form without buffering
// the whole file. Progress is measured over the file bytes, not the form
// envelope.
func multipartBody(asset *SelectedAsset, title string, onProgress ProgressFunc) (io.Reader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeForm(writer, asset, title, onProgress)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType()
}

func writeForm(writer *multipart.Writer, asset *SelectedAsset, title string, onProgress ProgressFunc) error {
	if err := writer.WriteField("title", title); err != nil {
		return err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, asset.FileName))
	header.Set("Content-Type", asset.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}

	src := io.Reader(asset.Body)
	if onProgress != nil {
		src = &progressReader{reader: asset.Body, total: asset.Size, report: onProgress}
	}
	_, err = io.Copy(part, src)
	return err
}

// progressReader counts bytes as they are read and reports the loaded/total
// ratio as an integer percentage. Percentages never decrease and never
// exceed 100, even if the source yields more bytes than declared.
type progressReader struct {
	reader io.Reader
	total  int64
	loaded int64
	last   int
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.loaded += int64(n)
		pct := 100
		if p.total > 0 {
			pct = int(p.loaded * 100 / p.total)
		}
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
