package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// Uploader stores one named object and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type azureUploader struct {
	client *container.Client
}

// NewAzureUploader connects to a blob container. A URL carrying a SAS token
// is used as is; otherwise the default Azure credential chain (environment,
// managed identity, az login) is used.
func NewAzureUploader(containerURL string) (Uploader, error) {
	if containerURL == "" {
		return nil, errors.New("no container URL configured (set publish.container_url)")
	}
	if strings.Contains(containerURL, "sig=") {
		c, err := container.NewClientWithNoCredential(containerURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating container client: %w", err)
		}
		return &azureUploader{client: c}, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("loading Azure credential: %w", err)
	}
	c, err := container.NewClient(containerURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating container client: %w", err)
	}
	return &azureUploader{client: c}, nil
}

func (u *azureUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	bb := u.client.NewBlockBlobClient(name)
	_, err := bb.UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
		Metadata:    map[string]*string{"generator": to.Ptr("ctaeval")},
	})
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			return "", fmt.Errorf("uploading %s: %s (HTTP %d)", name, respErr.ErrorCode, respErr.StatusCode)
		}
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return bb.URL(), nil
}

// Publisher uploads generated reports under a timestamped prefix so that
// earlier uploads are never overwritten.
type Publisher struct {
	up     Uploader
	prefix string
	now    func() time.Time
}

func NewPublisher(up Uploader, prefix string) *Publisher {
	return &Publisher{up: up, prefix: strings.Trim(prefix, "/"), now: time.Now}
}

// BlobName returns where a file called base is stored.
func (p *Publisher) BlobName(base string) string {
	stamp := p.now().UTC().Format("20060102T150405Z")
	if p.prefix == "" {
		return path.Join(stamp, base)
	}
	return path.Join(p.prefix, stamp, base)
}

// Publish uploads data under base. The content type follows the extension.
func (p *Publisher) Publish(ctx context.Context, base string, data []byte) (string, error) {
	contentType := "application/octet-stream"
	if f, err := ParseFormat(filepath.Ext(base)); err == nil {
		contentType = f.ContentType()
	}
	name := p.BlobName(base)
	url, err := p.up.Upload(ctx, name, data, contentType)
	if err != nil {
		return "", err
	}
	slog.Info("published report", "blob", name, "bytes", len(data))
	return url, nil
}

// PublishFiles uploads each file and returns the URLs in order.
func (p *Publisher) PublishFiles(ctx context.Context, paths ...string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for _, fp := range paths {
		data, err := os.ReadFile(fp)
		if err != nil {
			return urls, fmt.Errorf("reading %s: %w", fp, err)
		}
		url, err := p.Publish(ctx, filepath.Base(fp), data)
		if err != nil {
			return urls, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
