package accounts

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// Minimal proxy bytecode surrounding the implementation address in every bound
// account, as deployed by the ERC-6551 reference registry.
var (
	proxyPrefix = common.FromHex("0x3d60ad80600a3d3981f3363d3d373d3d3d363d73")
	proxySuffix = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

var footerArgs = func() abi.Arguments {
	uint256Ty, _ := abi.NewType("uint256", "", nil)
	addressTy, _ := abi.NewType("address", "", nil)
	return abi.Arguments{
		{Name: "salt", Type: uint256Ty},
		{Name: "chainId", Type: uint256Ty},
		{Name: "tokenContract", Type: addressTy},
		{Name: "tokenId", Type: uint256Ty},
	}
}()

// ErrInvalidRequest is returned for account requests that cannot be derived.
var ErrInvalidRequest = errors.New("invalid account request")

// CreationCode returns the init code of the bound account: the proxy bytecode followed by
// the ABI encoded (salt, chainId, tokenContract, tokenId) footer.
func CreationCode(req interfaces.AccountRequest) ([]byte, error) {
	if req.ChainID == nil || req.ChainID.Sign() < 0 {
		return nil, fmt.Errorf("%w: chain id must be set", ErrInvalidRequest)
	}

	footer, err := footerArgs.Pack(saltOf(req), req.ChainID, req.TokenContract, req.TokenID.Big())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	code := make([]byte, 0, len(proxyPrefix)+common.AddressLength+len(proxySuffix)+len(footer))
	code = append(code, proxyPrefix...)
	code = append(code, req.Implementation.Bytes()...)
	code = append(code, proxySuffix...)
	code = append(code, footer...)
	return code, nil
}

// ComputeAddress derives the CREATE2 address the factory at factoryAddr assigns to req.
// The result only depends on its inputs, so any party can recompute it offline.
func ComputeAddress(factoryAddr common.Address, req interfaces.AccountRequest) (common.Address, error) {
	code, err := CreationCode(req)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.CreateAddress2(factoryAddr, common.BigToHash(saltOf(req)), crypto.Keccak256(code)), nil
}

func saltOf(req interfaces.AccountRequest) *big.Int {
	if req.Salt == nil {
		return new(big.Int)
	}
	return req.Salt
}
