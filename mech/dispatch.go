package mech

// MechanismType identifies one exposed mechanism operation, mirroring the
// flat enum a dispatch table keys off of rather than a type hierarchy.
type MechanismType int

const (
	MechanismDerivePKCS5 MechanismType = iota
	MechanismDerivePKCS12
	MechanismDeriveSSL
	MechanismDeriveTLS10
	MechanismDeriveTLS12
	MechanismDeriveS2K
	MechanismDeriveCMP
	MechanismSignPKCS1
	MechanismVerifyPKCS1
	MechanismSignSSL
	MechanismVerifySSL
	MechanismWrapPKCS1
	MechanismUnwrapPKCS1
	MechanismWrapPKCS1PGP
	MechanismUnwrapPKCS1PGP
	MechanismWrapOAEP
	MechanismUnwrapOAEP
	MechanismWrapCMS
	MechanismUnwrapCMS
	MechanismWrapPrivateKey
	MechanismUnwrapPrivateKey
)

func (m MechanismType) String() string {
	switch m {
	case MechanismDerivePKCS5:
		return "derivePKCS5"
	case MechanismDerivePKCS12:
		return "derivePKCS12"
	case MechanismDeriveSSL:
		return "deriveSSL"
	case MechanismDeriveTLS10:
		return "deriveTLS"
	case MechanismDeriveTLS12:
		return "deriveTLS12"
	case MechanismDeriveS2K:
		return "derivePGP"
	case MechanismDeriveCMP:
		return "deriveCMP"
	case MechanismSignPKCS1:
		return "signPKCS1"
	case MechanismVerifyPKCS1:
		return "sigcheckPKCS1"
	case MechanismSignSSL:
		return "signSSL"
	case MechanismVerifySSL:
		return "sigcheckSSL"
	case MechanismWrapPKCS1:
		return "exportPKCS1"
	case MechanismUnwrapPKCS1:
		return "importPKCS1"
	case MechanismWrapPKCS1PGP:
		return "exportPKCS1PGP"
	case MechanismUnwrapPKCS1PGP:
		return "importPKCS1PGP"
	case MechanismWrapOAEP:
		return "exportOAEP"
	case MechanismUnwrapOAEP:
		return "importOAEP"
	case MechanismWrapCMS:
		return "exportCMS"
	case MechanismUnwrapCMS:
		return "importCMS"
	case MechanismWrapPrivateKey:
		return "exportPrivateKey"
	case MechanismUnwrapPrivateKey:
		return "importPrivateKey"
	default:
		return "unknown-mechanism"
	}
}

// DeriveFunc, SignFunc, VerifyFunc and WrapFunc are the shapes every entry
// of the dispatch tables below conforms to.
type (
	DeriveFunc func(*DeriveInfo) ([]byte, error)
	SignFunc   func(*SignInfo) ([]byte, error)
	VerifyFunc func(*SignInfo, []byte) error
	WrapFunc   func(*WrapInfo, []byte) ([]byte, error)
)

// deriveDispatch is the key-derivation mechanism table.
var deriveDispatch = map[MechanismType]DeriveFunc{
	MechanismDerivePKCS5: DerivePKCS5,
	MechanismDerivePKCS12: func(info *DeriveInfo) ([]byte, error) {
		return DerivePKCS12(info, PKCS12DiversifierKey)
	},
	MechanismDeriveCMP: DeriveCMP,
	MechanismDeriveSSL: func(info *DeriveInfo) ([]byte, error) {
		return DeriveSSL(info.Password, info.Salt, info.OutLen)
	},
	MechanismDeriveTLS10: func(info *DeriveInfo) ([]byte, error) {
		return DeriveTLS10(info.Password, info.Label, info.Seed, info.OutLen)
	},
	MechanismDeriveTLS12: func(info *DeriveInfo) ([]byte, error) {
		return DeriveTLS12(info, info.Label, info.Seed)
	},
	MechanismDeriveS2K: func(info *DeriveInfo) ([]byte, error) {
		return DeriveS2K(info, info.ByteCount)
	},
}

// signDispatch is the signature mechanism table.
var signDispatch = map[MechanismType]SignFunc{
	MechanismSignPKCS1: SignPKCS1,
	MechanismSignSSL:   SignSSL,
}

// verifyDispatch is the signature-check mechanism table.
var verifyDispatch = map[MechanismType]VerifyFunc{
	MechanismVerifyPKCS1: VerifyPKCS1,
	MechanismVerifySSL:   VerifySSL,
}

// wrapDispatch is the key-transport / key-wrap mechanism table. PKCS#1
// wrap takes its payload from info.Payload rather than a function
// argument, so its table entry ignores the second parameter; OAEP takes
// the second parameter as its message.
var wrapDispatch = map[MechanismType]WrapFunc{
	MechanismWrapPKCS1: func(info *WrapInfo, _ []byte) ([]byte, error) {
		return WrapPKCS1(info)
	},
	MechanismWrapPKCS1PGP: WrapPKCS1PGP,
	MechanismWrapOAEP: func(info *WrapInfo, payload []byte) ([]byte, error) {
		return WrapOAEP(info, payload)
	},
	MechanismWrapCMS: WrapCMS,
	MechanismWrapPrivateKey: func(info *WrapInfo, der []byte) ([]byte, error) {
		return WrapPrivateKey(info, der)
	},
}

var unwrapDispatch = map[MechanismType]WrapFunc{
	MechanismUnwrapPKCS1:     UnwrapPKCS1,
	MechanismUnwrapPKCS1PGP:  UnwrapPKCS1PGP,
	MechanismUnwrapOAEP:      UnwrapOAEP,
	MechanismUnwrapCMS:       UnwrapCMS,
	MechanismUnwrapPrivateKey: func(info *WrapInfo, ciphertext []byte) ([]byte, error) {
		return UnwrapPrivateKey(info, ciphertext)
	},
}

// Derive looks up and invokes a key-derivation mechanism by type.
func Derive(m MechanismType, info *DeriveInfo) ([]byte, error) {
	fn, ok := deriveDispatch[m]
	if !ok {
		return nil, newErr(m.String(), StatusNotAvail, nil)
	}
	return fn(info)
}

// Sign looks up and invokes a signature mechanism by type.
func Sign(m MechanismType, info *SignInfo) ([]byte, error) {
	fn, ok := signDispatch[m]
	if !ok {
		return nil, newErr(m.String(), StatusNotAvail, nil)
	}
	return fn(info)
}

// Verify looks up and invokes a signature-check mechanism by type.
func Verify(m MechanismType, info *SignInfo, signature []byte) error {
	fn, ok := verifyDispatch[m]
	if !ok {
		return newErr(m.String(), StatusNotAvail, nil)
	}
	return fn(info, signature)
}

// Wrap looks up and invokes a key-transport/key-wrap mechanism by type.
func Wrap(m MechanismType, info *WrapInfo, payload []byte) ([]byte, error) {
	fn, ok := wrapDispatch[m]
	if !ok {
		return nil, newErr(m.String(), StatusNotAvail, nil)
	}
	return fn(info, payload)
}

// Unwrap looks up and invokes a key-transport/key-wrap unmechanism by
// type.
func Unwrap(m MechanismType, info *WrapInfo, ciphertext []byte) ([]byte, error) {
	fn, ok := unwrapDispatch[m]
	if !ok {
		return nil, newErr(m.String(), StatusNotAvail, nil)
	}
	return fn(info, ciphertext)
}
