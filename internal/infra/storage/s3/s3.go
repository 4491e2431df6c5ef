// Package s3 — шлюз к объектному хранилищу поверх minio-go.
// Только механизм: авторизацию префиксов делает вызывающая сторона
// (internal/policy), сюда приходят уже проверенные ключи.
package s3

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

const (
	presignTTL = time.Hour
	// Потолок одного листинга; сверх него выставляем Listing.Truncated,
	// а не молча теряем записи.
	maxListEntries = 10000
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Storage struct {
	cl     *minio.Client
	bucket string
	log    *log.Logger
}

var _ domain.ObjectStore = (*Storage)(nil)

func New(_ context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, log: logger}, nil
}

// List — одноуровневый листинг: объекты и общие префиксы за разделителем "/".
// minio-go сам докручивает continuation-страницы через канал.
func (s *Storage) List(ctx context.Context, prefix string) (domain.Listing, error) {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out domain.Listing
	n := 0
	for obj := range s.cl.ListObjects(lctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return domain.Listing{}, fmt.Errorf("list %q: %w", prefix, obj.Err)
		}
		// сам маркер запрошенной папки в выдачу не входит
		if obj.Key == prefix {
			continue
		}
		if n >= maxListEntries {
			out.Truncated = true
			break
		}
		n++
		if strings.HasSuffix(obj.Key, "/") {
			out.Folders = append(out.Folders, domain.Entry{
				Name: entryName(obj.Key, prefix),
				Path: obj.Key,
			})
			continue
		}
		out.Files = append(out.Files, domain.Entry{
			Name:         entryName(obj.Key, prefix),
			Path:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

// entryName — имя элемента: ключ без запрошенного префикса и без
// завершающего "/".
func entryName(key, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, prefix), "/")
}

// PresignPut выдаёт URL на прямую загрузку; Content-Type входит в подпись.
func (s *Storage) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hdr := http.Header{"Content-Type": []string{contentType}}
	u, err := s.cl.PresignHeader(ctx, http.MethodPut, s.bucket, key, presignTTL, url.Values{}, hdr)
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return u.String(), nil
}

// PresignGet сначала проверяет существование объекта: подпись «в никуда»
// превратилась бы у клиента в непонятную ошибку стора вместо честного 404.
func (s *Storage) PresignGet(ctx context.Context, key string) (string, error) {
	if _, err := s.cl.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("stat %q: %w", key, err)
	}
	u, err := s.cl.PresignedGetObject(ctx, s.bucket, key, presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign get %q: %w", key, err)
	}
	return u.String(), nil
}

func (s *Storage) DeleteOne(ctx context.Context, key string) error {
	if err := s.cl.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// DeleteTree удаляет всё под префиксом батчами. Best-effort: стор не даёт
// мультиключевой транзакции, частичный сбой оставляет дерево удалённым
// частично. Пустое дерево — успешный no-op.
func (s *Storage) DeleteTree(ctx context.Context, prefix string) error {
	objectsCh := make(chan minio.ObjectInfo)
	var listErr error

	go func() {
		defer close(objectsCh)
		for obj := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if obj.Err != nil {
				listErr = obj.Err
				return
			}
			select {
			case objectsCh <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	var firstErr error
	for rmErr := range s.cl.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %q: %w", rmErr.ObjectName, rmErr.Err)
		}
	}
	// errCh закрывается после objectsCh, listErr к этому моменту записан
	if listErr != nil {
		return fmt.Errorf("list tree %q: %w", prefix, listErr)
	}
	return firstErr
}

// CreateMarker пишет нулевой объект-маркер пустой папки.
func (s *Storage) CreateMarker(ctx context.Context, key string) error {
	if !strings.HasSuffix(key, "/") {
		return domain.ErrBadParams
	}
	_, err := s.cl.PutObject(ctx, s.bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("create marker %q: %w", key, err)
	}
	return nil
}

// StreamZip стримит архив в w, не буферизуя его целиком: объекты
// скачиваются по одному и сразу сжимаются. Ошибка отдельного объекта
// логируется и не валит весь архив.
func (s *Storage) StreamZip(ctx context.Context, prefix string, w io.Writer) error {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	zw := zip.NewWriter(w)
	wrote := 0

	for obj := range s.cl.ListObjects(lctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			_ = zw.Close()
			return fmt.Errorf("list %q: %w", prefix, obj.Err)
		}
		name, ok := zipMember(obj.Key, prefix)
		if !ok {
			continue
		}
		if err := s.appendZipEntry(lctx, zw, obj.Key, name); err != nil {
			if ctx.Err() != nil {
				_ = zw.Close()
				return ctx.Err()
			}
			s.log.Printf("zip: skip %q: %v", obj.Key, err)
			continue
		}
		wrote++
	}

	if wrote == 0 {
		// ни одного члена — ни байта в w ещё не ушло, вызывающая
		// сторона может честно ответить 404
		return domain.ErrNotFound
	}
	return zw.Close()
}

// zipMember решает, попадает ли ключ в архив и под каким именем:
// имя члена — ключ без запрошенного префикса; маркеры папок (ключи
// с завершающим "/") членами не становятся.
func zipMember(key, prefix string) (string, bool) {
	if strings.HasSuffix(key, "/") {
		return "", false
	}
	name := strings.TrimPrefix(key, prefix)
	if name == "" {
		return "", false
	}
	return name, true
}

func (s *Storage) appendZipEntry(ctx context.Context, zw *zip.Writer, key, name string) error {
	obj, err := s.cl.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, obj)
	return err
}

func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
	}
	return false
}
