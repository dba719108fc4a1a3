package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives one formatted request/response exchange per call.
type Output interface {
	Write(id string, contents string)
}

// DirectoryOutput writes every exchange to its own file in a directory.
type DirectoryOutput struct {
	directory string
}

// NewDirectoryOutput empties (or creates) dir and returns an Output that
// writes into it.
func NewDirectoryOutput(dir string) (DirectoryOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return DirectoryOutput{}, err
	}
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return DirectoryOutput{}, err
	}
	return DirectoryOutput{directory: dir}, nil
}

func (o DirectoryOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump file", "id", id, "err", err)
	}
}

// DumpExchanges writes every response the client receives, along with the
// request that produced it, to output. Files are named
// <sequence>_<status>.txt so retries of one address stay in order.
func DumpExchanges(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(
			fmt.Sprintf("%05d_%d.txt", id, res.StatusCode()),
			formatHttpMessage(res),
		)
		return nil
	})
}
