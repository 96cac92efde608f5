package ipfsstore

import (
	"bytes"
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	shell "github.com/ipfs/go-ipfs-api"
	"github.com/questline/mint-console/modules/minter/blobstore"
)

type Config struct {
	// ApiUrl points at an IPFS node or a pinning service exposing the node
	// HTTP API.
	ApiUrl     string `mapstructure:"api_url"`
	GatewayUrl string `mapstructure:"gateway_url"`
}

const defaultGatewayUrl = "https://ipfs.io"

// Store pins blobs to IPFS. The returned content id is the CID, so identical
// uploads always resolve to the same object.
type Store struct {
	shell      *shell.Shell
	gatewayUrl string
}

var _ blobstore.Store = (*Store)(nil)

func New(conf Config) *Store {
	gatewayUrl := strings.TrimRight(conf.GatewayUrl, "/")
	if gatewayUrl == "" {
		gatewayUrl = defaultGatewayUrl
	}
	return &Store{
		shell:      shell.NewShell(conf.ApiUrl),
		gatewayUrl: gatewayUrl,
	}
}

func (s *Store) Upload(ctx context.Context, name string, data []byte) (blobstore.Object, error) {
	cid, err := s.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return blobstore.Object{}, errors.Wrapf(err, "can't add %q to ipfs", name)
	}
	return blobstore.Object{
		ContentId:  cid,
		NativeUrl:  "ipfs://" + cid,
		GatewayUrl: s.gatewayUrl + "/ipfs/" + cid,
	}, nil
}
