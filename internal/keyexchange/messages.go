package keyexchange

import "google.golang.org/protobuf/encoding/protowire"

// Product identifies the client application presenting itself to the
// access point.
type Product int32

const (
	ProductClient     Product = 0
	ProductLibspotify Product = 1
	ProductMobile     Product = 2
	ProductPartner    Product = 3
)

// ProductFlags carries feature flags advertised alongside Product.
type ProductFlags int32

const ProductFlagNone ProductFlags = 0

// Platform identifies the OS/architecture the client runs on.
type Platform int32

const (
	PlatformWin32X86    Platform = 0
	PlatformOSXX86      Platform = 1
	PlatformLinuxX86    Platform = 2
	PlatformOSXPPC      Platform = 3
	PlatformLinuxX86_64 Platform = 4
)

// Cryptosuite identifies the post-handshake symmetric cipher. This
// implementation only ever advertises and accepts Shannon (spec.md §1:
// "makes no attempt at protocol negotiation beyond advertising a single
// cryptosuite").
type Cryptosuite int32

const (
	CryptosuiteShannon     Cryptosuite = 0
	CryptosuiteRC4SHA1HMAC Cryptosuite = 1
)

// field numbers, taken from the public keyexchange.proto wire layout.
const (
	fieldClientHelloBuildInfo    protowire.Number = 10
	fieldClientHelloCryptosuites protowire.Number = 30
	fieldClientHelloLoginCrypto  protowire.Number = 40
	fieldClientHelloNonce        protowire.Number = 50
	fieldClientHelloPadding      protowire.Number = 60

	fieldBuildInfoPlatform protowire.Number = 1
	fieldBuildInfoProduct  protowire.Number = 2
	fieldBuildInfoFlags    protowire.Number = 3
	fieldBuildInfoVersion  protowire.Number = 4

	fieldLoginCryptoHelloDH protowire.Number = 10

	fieldDHHelloGc              protowire.Number = 10
	fieldDHHelloServerKeysKnown protowire.Number = 20

	fieldAPResponseChallenge protowire.Number = 10

	fieldAPChallengeLoginCrypto protowire.Number = 10

	fieldLoginCryptoChallengeDH protowire.Number = 10

	fieldDHChallengeGs          protowire.Number = 10
	fieldDHChallengeGsSignature protowire.Number = 20

	fieldClientResponseLoginCrypto protowire.Number = 10
	fieldClientResponsePoW         protowire.Number = 20
	fieldClientResponseCrypto      protowire.Number = 30

	fieldLoginCryptoResponseDH protowire.Number = 10

	fieldDHResponseHmac protowire.Number = 10
)

// BuildInfo describes the client build presented in ClientHello.
type BuildInfo struct {
	Platform     Platform
	Product      Product
	ProductFlags []ProductFlags
	Version      uint64
}

func (b *BuildInfo) marshal() []byte {
	var dst []byte
	dst = appendVarint(dst, fieldBuildInfoPlatform, uint64(b.Platform))
	dst = appendVarint(dst, fieldBuildInfoProduct, uint64(b.Product))
	for _, f := range b.ProductFlags {
		dst = appendVarint(dst, fieldBuildInfoFlags, uint64(f))
	}
	dst = appendVarint(dst, fieldBuildInfoVersion, b.Version)
	return dst
}

// DiffieHellmanHello carries the client's DH public value in ClientHello.
type DiffieHellmanHello struct {
	Gc              []byte
	ServerKeysKnown uint32
}

func (d *DiffieHellmanHello) marshal() []byte {
	var dst []byte
	dst = appendBytes(dst, fieldDHHelloGc, d.Gc)
	dst = appendVarint(dst, fieldDHHelloServerKeysKnown, uint64(d.ServerKeysKnown))
	return dst
}

// LoginCryptoHello wraps the single supported key-agreement mechanism.
type LoginCryptoHello struct {
	DiffieHellman *DiffieHellmanHello
}

func (l *LoginCryptoHello) marshal() []byte {
	var dst []byte
	if l.DiffieHellman != nil {
		dst = appendMessage(dst, fieldLoginCryptoHelloDH, l.DiffieHellman.marshal())
	}
	return dst
}

// ClientHello is the first message sent by the client (spec.md §4.2).
type ClientHello struct {
	BuildInfo             *BuildInfo
	CryptosuitesSupported []Cryptosuite
	LoginCryptoHello      *LoginCryptoHello
	ClientNonce           []byte
	Padding               []byte
}

// Marshal serializes the message using the protobuf wire format.
func (c *ClientHello) Marshal() []byte {
	var dst []byte
	if c.BuildInfo != nil {
		dst = appendMessage(dst, fieldClientHelloBuildInfo, c.BuildInfo.marshal())
	}
	for _, cs := range c.CryptosuitesSupported {
		dst = appendVarint(dst, fieldClientHelloCryptosuites, uint64(cs))
	}
	if c.LoginCryptoHello != nil {
		dst = appendMessage(dst, fieldClientHelloLoginCrypto, c.LoginCryptoHello.marshal())
	}
	dst = appendBytes(dst, fieldClientHelloNonce, c.ClientNonce)
	dst = appendBytes(dst, fieldClientHelloPadding, c.Padding)
	return dst
}

// Unmarshal decodes b into a ClientHello. Only the client uses Marshal in
// production, but the wire format is symmetric and a test double playing
// the access point's role needs to read what the client sent.
func (c *ClientHello) Unmarshal(b []byte) error {
	return consumeFields(b, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case field == fieldClientHelloBuildInfo && typ == protowire.BytesType:
			payload, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			bi := &BuildInfo{}
			if err := bi.unmarshal(payload); err != nil {
				return 0, false, err
			}
			c.BuildInfo = bi
			return n, true, nil
		case field == fieldClientHelloCryptosuites && typ == protowire.VarintType:
			val, n, err := consumeVarint(v)
			if err != nil {
				return 0, false, err
			}
			c.CryptosuitesSupported = append(c.CryptosuitesSupported, Cryptosuite(val))
			return n, true, nil
		case field == fieldClientHelloLoginCrypto && typ == protowire.BytesType:
			payload, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			lc := &LoginCryptoHello{}
			if err := lc.unmarshal(payload); err != nil {
				return 0, false, err
			}
			c.LoginCryptoHello = lc
			return n, true, nil
		case field == fieldClientHelloNonce && typ == protowire.BytesType:
			val, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			c.ClientNonce = val
			return n, true, nil
		case field == fieldClientHelloPadding && typ == protowire.BytesType:
			val, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			c.Padding = val
			return n, true, nil
		default:
			return 0, false, nil
		}
	})
}

func (b *BuildInfo) unmarshal(raw []byte) error {
	return consumeFields(raw, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		val, n, err := consumeVarint(v)
		if err != nil {
			return 0, false, err
		}
		switch field {
		case fieldBuildInfoPlatform:
			b.Platform = Platform(val)
		case fieldBuildInfoProduct:
			b.Product = Product(val)
		case fieldBuildInfoFlags:
			b.ProductFlags = append(b.ProductFlags, ProductFlags(val))
		case fieldBuildInfoVersion:
			b.Version = val
		default:
			return 0, false, nil
		}
		return n, true, nil
	})
}

func (l *LoginCryptoHello) unmarshal(raw []byte) error {
	return consumeFields(raw, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if field != fieldLoginCryptoHelloDH || typ != protowire.BytesType {
			return 0, false, nil
		}
		payload, n, err := consumeBytes(v)
		if err != nil {
			return 0, false, err
		}
		dh := &DiffieHellmanHello{}
		if err := dh.unmarshal(payload); err != nil {
			return 0, false, err
		}
		l.DiffieHellman = dh
		return n, true, nil
	})
}

func (d *DiffieHellmanHello) unmarshal(raw []byte) error {
	return consumeFields(raw, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case field == fieldDHHelloGc && typ == protowire.BytesType:
			val, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			d.Gc = val
			return n, true, nil
		case field == fieldDHHelloServerKeysKnown && typ == protowire.VarintType:
			val, n, err := consumeVarint(v)
			if err != nil {
				return 0, false, err
			}
			d.ServerKeysKnown = uint32(val)
			return n, true, nil
		default:
			return 0, false, nil
		}
	})
}

// DiffieHellmanChallenge carries the server's signed DH public value.
type DiffieHellmanChallenge struct {
	Gs          []byte
	GsSignature []byte
}

// LoginCryptoChallenge wraps the single supported challenge mechanism.
type LoginCryptoChallenge struct {
	DiffieHellman *DiffieHellmanChallenge
}

// APChallenge is the server's authentication challenge.
type APChallenge struct {
	LoginCryptoChallenge *LoginCryptoChallenge
}

// APResponseMessage is the server's reply to ClientHello (spec.md §4.3).
type APResponseMessage struct {
	Challenge *APChallenge
}

// Marshal serializes the message using the protobuf wire format. Only a
// test double playing the access point's role calls this in this
// codebase; the real client only ever unmarshals an APResponseMessage.
func (m *APResponseMessage) Marshal() []byte {
	var dst []byte
	if m.Challenge != nil {
		dst = appendMessage(dst, fieldAPResponseChallenge, m.Challenge.marshal())
	}
	return dst
}

func (a *APChallenge) marshal() []byte {
	var dst []byte
	if a.LoginCryptoChallenge != nil {
		dst = appendMessage(dst, fieldAPChallengeLoginCrypto, a.LoginCryptoChallenge.marshal())
	}
	return dst
}

func (l *LoginCryptoChallenge) marshal() []byte {
	var dst []byte
	if l.DiffieHellman != nil {
		dst = appendMessage(dst, fieldLoginCryptoChallengeDH, l.DiffieHellman.marshal())
	}
	return dst
}

func (d *DiffieHellmanChallenge) marshal() []byte {
	var dst []byte
	dst = appendBytes(dst, fieldDHChallengeGs, d.Gs)
	dst = appendBytes(dst, fieldDHChallengeGsSignature, d.GsSignature)
	return dst
}

// Unmarshal decodes b into an APResponseMessage, ignoring fields this
// client has no use for (spec.md §4.4 only reads challenge.login_crypto_
// challenge.diffie_hellman.{gs,gs_signature}).
func (m *APResponseMessage) Unmarshal(b []byte) error {
	return consumeFields(b, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if field != fieldAPResponseChallenge || typ != protowire.BytesType {
			return 0, false, nil
		}
		payload, n, err := consumeBytes(v)
		if err != nil {
			return 0, false, err
		}
		ch := &APChallenge{}
		if err := ch.unmarshal(payload); err != nil {
			return 0, false, err
		}
		m.Challenge = ch
		return n, true, nil
	})
}

func (a *APChallenge) unmarshal(b []byte) error {
	return consumeFields(b, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if field != fieldAPChallengeLoginCrypto || typ != protowire.BytesType {
			return 0, false, nil
		}
		payload, n, err := consumeBytes(v)
		if err != nil {
			return 0, false, err
		}
		lc := &LoginCryptoChallenge{}
		if err := lc.unmarshal(payload); err != nil {
			return 0, false, err
		}
		a.LoginCryptoChallenge = lc
		return n, true, nil
	})
}

func (l *LoginCryptoChallenge) unmarshal(b []byte) error {
	return consumeFields(b, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		if field != fieldLoginCryptoChallengeDH || typ != protowire.BytesType {
			return 0, false, nil
		}
		payload, n, err := consumeBytes(v)
		if err != nil {
			return 0, false, err
		}
		dh := &DiffieHellmanChallenge{}
		if err := dh.unmarshal(payload); err != nil {
			return 0, false, err
		}
		l.DiffieHellman = dh
		return n, true, nil
	})
}

func (d *DiffieHellmanChallenge) unmarshal(b []byte) error {
	return consumeFields(b, func(field protowire.Number, typ protowire.Type, v []byte) (int, bool, error) {
		switch {
		case field == fieldDHChallengeGs && typ == protowire.BytesType:
			val, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			d.Gs = val
			return n, true, nil
		case field == fieldDHChallengeGsSignature && typ == protowire.BytesType:
			val, n, err := consumeBytes(v)
			if err != nil {
				return 0, false, err
			}
			d.GsSignature = val
			return n, true, nil
		default:
			return 0, false, nil
		}
	})
}

// DiffieHellmanResponse carries the client's HMAC challenge response.
type DiffieHellmanResponse struct {
	Hmac []byte
}

func (d *DiffieHellmanResponse) marshal() []byte {
	return appendBytes(nil, fieldDHResponseHmac, d.Hmac)
}

// LoginCryptoResponse wraps the single supported response mechanism.
type LoginCryptoResponse struct {
	DiffieHellman *DiffieHellmanResponse
}

func (l *LoginCryptoResponse) marshal() []byte {
	var dst []byte
	if l.DiffieHellman != nil {
		dst = appendMessage(dst, fieldLoginCryptoResponseDH, l.DiffieHellman.marshal())
	}
	return dst
}

// ClientResponsePlaintext is the final client message of the handshake
// (spec.md §4.6). PoWResponse and CryptoResponse are present-but-empty;
// see the TODO at their call site in internal/handshake/response_emitter.go.
type ClientResponsePlaintext struct {
	LoginCryptoResponse   *LoginCryptoResponse
	PoWResponsePresent    bool
	CryptoResponsePresent bool
}

// Marshal serializes the message using the protobuf wire format.
func (c *ClientResponsePlaintext) Marshal() []byte {
	var dst []byte
	if c.LoginCryptoResponse != nil {
		dst = appendMessage(dst, fieldClientResponseLoginCrypto, c.LoginCryptoResponse.marshal())
	}
	if c.PoWResponsePresent {
		dst = appendMessage(dst, fieldClientResponsePoW, []byte{})
	}
	if c.CryptoResponsePresent {
		dst = appendMessage(dst, fieldClientResponseCrypto, []byte{})
	}
	return dst
}
