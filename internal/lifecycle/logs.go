package lifecycle

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"
)

// TailLines returns the last n lines of path.
func TailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, sc.Text())
	}
	return ring, sc.Err()
}

// Follow copies bytes appended to path into w until ctx is done. Output
// starts at the current end of the file; truncation restarts from the top.
func Follow(ctx context.Context, path string, w io.Writer, poll time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	buf := make([]byte, 32*1024)
	for {
		if info, err := f.Stat(); err == nil && info.Size() < offset {
			if offset, err = f.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}
		n, err := f.Read(buf)
		if n > 0 {
			offset += int64(n)
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			continue
		}
		if err != nil && err != io.EOF {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(poll):
		}
	}
}
