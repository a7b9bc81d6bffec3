package bundle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zip"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "textures", Join("", "textures"))
	assert.Equal(t, "textures/b.png", Join("textures", "b.png"))
	assert.Equal(t, "Minetest/games/x", Join("Minetest/games", "x"))
}

func testMapFS() fstest.MapFS {
	return fstest.MapFS{
		"index.txt":          {Data: []byte("textures\ntextures/sub\n")},
		"textures/b.png":     {Data: bytes.Repeat([]byte("b"), 10)},
		"textures/sub/a.png": {Data: bytes.Repeat([]byte("a"), 40)},
	}
}

func TestFS_ReadDir(t *testing.T) {
	p := NewFS(testMapFS())
	ctx := context.Background()

	root, err := p.ReadDir(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.txt", "textures"}, root)

	names, err := p.ReadDir(ctx, "textures")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png", "sub"}, names)

	_, err = p.ReadDir(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFS_OpenAndSize(t *testing.T) {
	p := NewFS(testMapFS())
	ctx := context.Background()

	size, err := p.Size(ctx, "textures/sub/a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(40), size)

	rc, err := p.Open(ctx, "textures/b.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Len(t, data, 10)

	_, err = p.Size(ctx, "nope.png")
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, err = p.Open(ctx, "nope.png")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func buildZip(t *testing.T, entries []zipEntry) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		require.NoError(t, err)
		if e.data != nil {
			_, err = fw.Write(e.data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return r
}

type zipEntry struct {
	name string
	data []byte
}

func TestZip_ArchiveOrderAndPrefix(t *testing.T) {
	r := buildZip(t, []zipEntry{
		{name: "AndroidManifest.xml", data: []byte("<manifest/>")},
		{name: "assets/index.txt", data: []byte("textures\n")},
		{name: "assets/textures/sub/a.png", data: bytes.Repeat([]byte("a"), 40)},
		{name: "assets/textures/b.png", data: bytes.Repeat([]byte("b"), 10)},
		{name: "assets/empty/"},
	})
	z := NewZip(r, "assets")
	ctx := context.Background()

	root, err := z.ReadDir(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.txt", "textures", "empty"}, root)

	names, err := z.ReadDir(ctx, "textures")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub", "b.png"}, names, "archive order, not lexical")

	empty, err := z.ReadDir(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = z.ReadDir(ctx, "AndroidManifest.xml")
	require.ErrorIs(t, err, fs.ErrNotExist, "entries outside the prefix are hidden")

	size, err := z.Size(ctx, "textures/sub/a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(40), size)

	rc, err := z.Open(ctx, "textures/b.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, bytes.Repeat([]byte("b"), 10), data)

	_, err = z.Size(ctx, "textures")
	require.ErrorIs(t, err, fs.ErrNotExist, "directories have no size")
	require.NoError(t, z.Close())
}

func TestZip_ReadDirReturnsCopy(t *testing.T) {
	r := buildZip(t, []zipEntry{{name: "a/x", data: []byte("x")}})
	z := NewZip(r, "")
	names, err := z.ReadDir(context.Background(), "a")
	require.NoError(t, err)
	names[0] = "mutated"

	again, err := z.ReadDir(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, again)
}

type fakeObjects struct {
	listings map[string][]minio.ObjectInfo
	sizes    map[string]int64
	listErr  error
}

func (f *fakeObjects) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.listings[opts.Prefix])+1)
	if f.listErr != nil {
		ch <- minio.ObjectInfo{Err: f.listErr}
	}
	for _, obj := range f.listings[opts.Prefix] {
		ch <- obj
	}
	close(ch)
	return ch
}

func (f *fakeObjects) StatObject(_ context.Context, _, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	size, ok := f.sizes[object]
	if !ok {
		return minio.ObjectInfo{}, errors.New("NoSuchKey")
	}
	return minio.ObjectInfo{Key: object, Size: size}, nil
}

func (f *fakeObjects) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("not implemented")
}

func TestBucket_ReadDirAndSize(t *testing.T) {
	fake := &fakeObjects{
		listings: map[string][]minio.ObjectInfo{
			"game/": {
				{Key: "game/"},
				{Key: "game/index.txt"},
				{Key: "game/textures/"},
			},
			"game/textures/": {
				{Key: "game/textures/sub/"},
				{Key: "game/textures/b.png"},
			},
		},
		sizes: map[string]int64{"game/textures/b.png": 10},
	}
	b := NewBucket(fake, "assets", "/game")
	ctx := context.Background()

	root, err := b.ReadDir(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.txt", "textures"}, root)

	names, err := b.ReadDir(ctx, "textures")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub", "b.png"}, names)

	size, err := b.Size(ctx, "textures/b.png")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	_, err = b.Size(ctx, "textures/missing.png")
	require.Error(t, err)

	_, err = b.Open(ctx, "textures/b.png")
	require.Error(t, err)
}

func TestBucket_ListError(t *testing.T) {
	b := NewBucket(&fakeObjects{listErr: errors.New("access denied")}, "assets", "")
	_, err := b.ReadDir(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		arg  string
		want Location
	}{
		{arg: "/opt/game/assets", want: Location{Kind: KindDir, Path: "/opt/game/assets"}},
		{arg: "game.zip", want: Location{Kind: KindZip, Path: "game.zip"}},
		{arg: "build/Game.APK", want: Location{Kind: KindZip, Path: "build/Game.APK", Prefix: "assets/"}},
		{
			arg:  "s3://minio.local:9000/assets/minetest/v1",
			want: Location{Kind: KindBucket, Host: "minio.local:9000", Bucket: "assets", Prefix: "minetest/v1", Secure: true},
		},
		{
			arg:  "s3+http://localhost:9000/assets",
			want: Location{Kind: KindBucket, Host: "localhost:9000", Bucket: "assets"},
		},
		{
			arg:  "sftp://deploy@build.local:2222/srv/assets",
			want: Location{Kind: KindSFTP, Host: "build.local", User: "deploy", Port: 2222, Path: "/srv/assets"},
		},
		{arg: "sftp://build.local", want: Location{Kind: KindSFTP, Host: "build.local", Path: "."}},
		{arg: "deploy@build.local:assets", want: Location{Kind: KindSFTP, Host: "build.local", User: "deploy", Path: "assets"}},
		{arg: "build.local:", want: Location{Kind: KindSFTP, Host: "build.local", Path: "."}},
		{arg: "./build.local:assets", want: Location{Kind: KindDir, Path: "./build.local:assets"}},
		{arg: "/srv/a:b", want: Location{Kind: KindDir, Path: "/srv/a:b"}},
		{arg: "out/a:b", want: Location{Kind: KindDir, Path: "out/a:b"}},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseLocation(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, arg := range []string{"s3://", "s3://host", "s3://host/", "sftp:///path", "sftp://h:port/x"} {
		_, err := ParseLocation(arg)
		assert.Error(t, err, arg)
	}
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "/data", Location{Kind: KindDir, Path: "/data"}.String())
	assert.Equal(t, "s3://h:9000/b/p", Location{Kind: KindBucket, Host: "h:9000", Bucket: "b", Prefix: "p/", Secure: true}.String())
	assert.Equal(t, "s3+http://h/b", Location{Kind: KindBucket, Host: "h", Bucket: "b"}.String())
	assert.Equal(t, "deploy@h:/srv", Location{Kind: KindSFTP, Host: "h", User: "deploy", Path: "/srv"}.String())
	assert.Equal(t, "[h]:2222:assets", Location{Kind: KindSFTP, Host: "h", Port: 2222, Path: "assets"}.String())
}

func TestLocationOpen_Dir(t *testing.T) {
	dir := t.TempDir()
	p, closer, err := Location{Kind: KindDir, Path: dir}.Open(context.Background(), Credentials{})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	names, err := p.ReadDir(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
