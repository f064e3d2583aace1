package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"creaturecore/internal/infra/blob/core"
)

type mockObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

type mockClient struct {
	objects map[string]mockObject
}

func newMockClient() *mockClient { return &mockClient{objects: make(map[string]mockObject)} }

func (m *mockClient) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	obj := mockObject{data: data, metadata: in.Metadata, modified: time.Now().UTC()}
	if in.ContentType != nil {
		obj.contentType = *in.ContentType
	}
	m.objects[*in.Key] = obj
	return &awss3.PutObjectOutput{}, nil
}

func (m *mockClient) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	obj, ok := m.objects[*in.Key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", *in.Key)
	}
	return &awss3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(`"mock-etag"`),
		Metadata:      obj.metadata,
		LastModified:  aws.Time(obj.modified),
	}, nil
}

func (m *mockClient) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	obj, ok := m.objects[*in.Key]
	if !ok {
		return nil, fmt.Errorf("NotFound: %s", *in.Key)
	}
	return &awss3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(`"mock-etag"`),
		Metadata:      obj.metadata,
		LastModified:  aws.Time(obj.modified),
	}, nil
}

func (m *mockClient) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	delete(m.objects, *in.Key)
	return &awss3.DeleteObjectOutput{}, nil
}

func (m *mockClient) ListObjectsV2(_ context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	out := &awss3.ListObjectsV2Output{}
	for key, obj := range m.objects {
		if in.Prefix != nil && !strings.HasPrefix(key, *in.Prefix) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
		})
	}
	return out, nil
}

func newMockStore() (*Store, *mockClient) {
	client := newMockClient()
	return &Store{client: client, bucket: "archive"}, client
}

func TestPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	store, _ := newMockStore()

	info, err := store.Put(ctx, "snapshots/a.json", strings.NewReader("data"), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 4 || info.ContentType != "application/json" || info.ETag != "mock-etag" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := store.Put(ctx, "snapshots/a.json", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatal("overwrite should fail")
	}
}

func TestGetHeadDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newMockStore()
	if _, err := store.Put(ctx, "k", strings.NewReader("payload"), core.PutOptions{Metadata: map[string]string{"a": "b"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	info, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || info.Metadata["a"] != "b" {
		t.Fatalf("get mismatch: %s %+v", body, info)
	}

	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatal("head of missing key should fail")
	}

	ok, err := store.Delete(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Fatal("get after delete should fail")
	}
}

func TestListSortsByKey(t *testing.T) {
	ctx := context.Background()
	store, _ := newMockStore()
	for _, key := range []string{"snapshots/b", "snapshots/a", "other/c"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "snapshots/a" || infos[1].Key != "snapshots/b" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("CREATURECORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatal("expected missing bucket error")
	}
}
