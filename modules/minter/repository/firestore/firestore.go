package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/modules/minter/datagateway"
	"google.golang.org/api/option"
)

const (
	policiesCollection    = "minter_policies"
	designsCollection     = "minter_designs"
	snapshotsCollection   = "minter_snapshots"
	mintRecordsCollection = "minter_mint_records"
)

type Config struct {
	ProjectId       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Repository implements the registry and ledger gateways on Firestore.
type Repository struct {
	client *firestore.Client
}

var (
	_ datagateway.RegistryDataGateway   = (*Repository)(nil)
	_ datagateway.MintLedgerDataGateway = (*Repository)(nil)
)

func NewRepository(ctx context.Context, conf Config) (*Repository, error) {
	if conf.ProjectId == "" {
		return nil, errors.New("firestore project id is required")
	}
	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, conf.ProjectId, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't create firestore client")
	}
	return &Repository{client: client}, nil
}

func (r *Repository) Close() error {
	return errors.WithStack(r.client.Close())
}
