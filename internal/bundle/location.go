package bundle

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bamsammich/assetsync/internal/transport"
)

// Kind identifies which provider serves a location.
type Kind int

const (
	KindDir Kind = iota
	KindZip
	KindBucket
	KindSFTP
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindZip:
		return "zip"
	case KindBucket:
		return "bucket"
	case KindSFTP:
		return "sftp"
	default:
		return "unknown"
	}
}

// Location is a parsed source argument.
type Location struct {
	Kind   Kind
	Path   string // local path (KindDir, KindZip) or remote path (KindSFTP)
	Host   string // endpoint host[:port] (KindBucket) or SSH host (KindSFTP)
	User   string // SSH user (KindSFTP)
	Port   int    // SSH port (KindSFTP); 0 is the default
	Bucket string
	Prefix string // entry prefix inside a zip or bucket
	Secure bool
}

// String returns a human-readable representation.
func (l Location) String() string {
	switch l.Kind {
	case KindBucket:
	case KindSFTP:
		host := l.Host
		if l.Port != 0 {
			host = fmt.Sprintf("[%s]:%d", l.Host, l.Port)
		}
		if l.User != "" {
			host = l.User + "@" + host
		}
		return host + ":" + l.Path
	default:
		return l.Path
	}
	scheme := "s3"
	if !l.Secure {
		scheme = "s3+http"
	}
	s := fmt.Sprintf("%s://%s/%s", scheme, l.Host, l.Bucket)
	if l.Prefix != "" {
		s += "/" + strings.TrimSuffix(l.Prefix, "/")
	}
	return s
}

// ParseLocation parses a CLI source argument.
//
// Supported formats:
//   - /path/to/dir                     → directory
//   - /path/to/game.zip                → zip archive (whole archive)
//   - /path/to/game.apk                → zip archive, entries under assets/
//   - s3://host[:port]/bucket[/prefix] → object store over TLS
//   - s3+http://host[:port]/bucket/... → object store without TLS
//   - sftp://[user@]host[:port]/path   → remote directory over SSH
//   - [user@]host:path                 → remote directory over SSH
//
// A colon only marks a remote host when the part before it is non-empty and
// contains no path separator, so "./host:dir" and "/a:b" stay local.
func ParseLocation(arg string) (Location, error) {
	if strings.HasPrefix(arg, "s3://") || strings.HasPrefix(arg, "s3+http://") {
		return parseBucketURL(arg)
	}
	if strings.HasPrefix(arg, "sftp://") {
		return parseSFTPURL(arg)
	}
	if loc, ok := parseSCPStyle(arg); ok {
		return loc, nil
	}

	switch strings.ToLower(filepath.Ext(arg)) {
	case ".apk":
		return Location{Kind: KindZip, Path: arg, Prefix: APKAssetPrefix}, nil
	case ".zip":
		return Location{Kind: KindZip, Path: arg}, nil
	default:
		return Location{Kind: KindDir, Path: arg}, nil
	}
}

func parseBucketURL(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("parse %q: missing host", raw)
	}

	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return Location{}, fmt.Errorf("parse %q: missing bucket", raw)
	}
	bucket, prefix, _ := strings.Cut(trimmed, "/")

	return Location{
		Kind:   KindBucket,
		Host:   u.Host,
		Bucket: bucket,
		Prefix: prefix,
		Secure: u.Scheme == "s3",
	}, nil
}

func parseSFTPURL(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return Location{}, fmt.Errorf("parse %q: missing host", raw)
	}
	loc := Location{Kind: KindSFTP, Host: u.Hostname(), User: u.User.Username(), Path: u.Path}
	if p := u.Port(); p != "" {
		if loc.Port, err = strconv.Atoi(p); err != nil {
			return Location{}, fmt.Errorf("parse %q: bad port: %w", raw, err)
		}
	}
	if loc.Path == "" {
		loc.Path = "."
	}
	return loc, nil
}

func parseSCPStyle(arg string) (Location, bool) {
	if filepath.IsAbs(arg) || strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../") {
		return Location{}, false
	}
	hostPart, pathPart, found := strings.Cut(arg, ":")
	if !found || hostPart == "" || strings.ContainsAny(hostPart, `/\`) {
		return Location{}, false
	}
	user, host := "", hostPart
	if i := strings.LastIndexByte(hostPart, '@'); i >= 0 {
		user, host = hostPart[:i], hostPart[i+1:]
	}
	if host == "" {
		return Location{}, false
	}
	if pathPart == "" {
		pathPart = "."
	}
	return Location{Kind: KindSFTP, Host: host, User: user, Path: pathPart}, true
}

// Credentials authenticate against an object store or SSH host.
type Credentials struct {
	AccessKey   string
	SecretKey   string
	SSHKeyFile  string
	SSHPassword string
}

// Open constructs the provider for l. The returned closer is never nil.
//
//nolint:ireturn // factory returns interface by design
func (l Location) Open(ctx context.Context, creds Credentials) (Provider, io.Closer, error) {
	switch l.Kind {
	case KindSFTP:
		s, err := DialSFTP(ctx, l.Host, l.Path, transport.SSHOpts{
			User:     l.User,
			Port:     l.Port,
			KeyFile:  creds.SSHKeyFile,
			Password: creds.SSHPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case KindZip:
		z, err := OpenZip(l.Path, l.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return z, z, nil
	case KindBucket:
		b, err := NewBucketClient(BucketOptions{
			Endpoint:  l.Host,
			Bucket:    l.Bucket,
			Prefix:    l.Prefix,
			AccessKey: creds.AccessKey,
			SecretKey: creds.SecretKey,
			Secure:    l.Secure,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, nopCloser{}, nil
	default:
		return NewDir(l.Path), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
