package blobstore

import "context"

// Object is the result of one upload: an immutable content identifier and
// two renderable URL forms.
type Object struct {
	ContentId  string
	NativeUrl  string // protocol-native form, e.g. ipfs://<cid>
	GatewayUrl string // http gateway form
}

// Store is a content-addressed blob store. Used for artwork files and for
// the token metadata documents themselves.
type Store interface {
	Upload(ctx context.Context, name string, data []byte) (Object, error)
}
