package common

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkPreprod Network = "preprod"
	NetworkPreview Network = "preview"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet: {},
	NetworkPreprod: {},
	NetworkPreview: {},
}

// addressPrefixes maps each network to the bech32 human-readable part of its
// payment addresses.
var addressPrefixes = map[Network]string{
	NetworkMainnet: "addr",
	NetworkPreprod: "addr_test",
	NetworkPreview: "addr_test",
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

// AddressPrefix returns the bech32 prefix payment addresses carry on this network.
func (n Network) AddressPrefix() string {
	return addressPrefixes[n]
}

// IsTestnet reports whether the network is a test network. Testnets share the
// "addr_test" address prefix and the zero network id in address headers.
func (n Network) IsTestnet() bool {
	return n != NetworkMainnet
}

func (n Network) String() string {
	return string(n)
}
