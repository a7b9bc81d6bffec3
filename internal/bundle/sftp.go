package bundle

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"

	"github.com/pkg/sftp"

	"github.com/bamsammich/assetsync/internal/transport"
)

// SFTP reads a bundle from a directory on a remote host. Children are listed
// in lexical order.
type SFTP struct {
	client *sftp.Client
	root   string
	closer io.Closer // underlying SSH connection, if owned
}

// NewSFTP wraps an SFTP client. root is the remote bundle directory.
func NewSFTP(client *sftp.Client, root string) *SFTP {
	if root == "" {
		root = "."
	}
	return &SFTP{client: client, root: root}
}

// DialSFTP connects to host over SSH and opens an SFTP session rooted at root.
func DialSFTP(ctx context.Context, host, root string, opts transport.SSHOpts) (*SFTP, error) {
	conn, err := transport.DialSSH(ctx, host, opts)
	if err != nil {
		return nil, err
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sftp client: %w", err)
	}
	s := NewSFTP(client, root)
	s.closer = conn
	return s, nil
}

func (s *SFTP) abs(rel string) string {
	return path.Join(s.root, rel)
}

func (s *SFTP) ReadDir(_ context.Context, rel string) ([]string, error) {
	infos, err := s.client.ReadDir(s.abs(rel))
	if err != nil {
		return nil, fmt.Errorf("bundle: readdir %q: %w", rel, err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if n := fi.Name(); n != "." && n != ".." {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *SFTP) Open(_ context.Context, rel string) (io.ReadCloser, error) {
	f, err := s.client.Open(s.abs(rel))
	if err != nil {
		return nil, fmt.Errorf("bundle: open %q: %w", rel, err)
	}
	return f, nil
}

func (s *SFTP) Size(_ context.Context, rel string) (int64, error) {
	fi, err := s.client.Stat(s.abs(rel))
	if err != nil {
		return 0, fmt.Errorf("bundle: stat %q: %w", rel, err)
	}
	return fi.Size(), nil
}

// Close ends the SFTP session and, when DialSFTP opened it, the SSH
// connection.
func (s *SFTP) Close() error {
	err := s.client.Close()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
