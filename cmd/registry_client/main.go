package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/land-certificate-registry/accounts"
	"github.com/ruteri/land-certificate-registry/api"
	"github.com/ruteri/land-certificate-registry/api/clients"
	"github.com/ruteri/land-certificate-registry/cmd/flags"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/urfave/cli/v2"
)

var flagID *cli.StringFlag = &cli.StringFlag{
	Name:     "id",
	Required: true,
	Usage:    "certificate id, decimal or 0x-prefixed hex",
}
var flagRecipient *cli.StringFlag = &cli.StringFlag{
	Name:     "recipient",
	Required: true,
	Usage:    "address receiving the certificate",
}
var flagMetadata *cli.StringFlag = &cli.StringFlag{
	Name:     "metadata",
	Required: true,
	Usage:    "path to a JSON file with the parcel metadata, or - for stdin",
}
var flagSalt *cli.StringFlag = &cli.StringFlag{
	Name:  "salt",
	Value: "0",
	Usage: "account salt",
}

const usage string = `Issue, update and inspect land certificates.

Administrator commands sign their requests with --admin-key.`

func main() {
	flags.LoadEnv()

	app := &cli.App{
		Name:  "registry client",
		Usage: usage,
		Flags: []cli.Flag{
			flags.ServerAddrFlag,
			flags.AdminKeyFlag,
		},
		Commands: []*cli.Command{
			&cli.Command{
				Name:  "issue",
				Usage: "issue a certificate to a recipient",
				Flags: []cli.Flag{flagID, flagRecipient, flagMetadata},
				Action: func(cCtx *cli.Context) error {
					c, err := NewClientConfig(cCtx)
					if err != nil {
						return err
					}
					return c.Issue(cCtx)
				},
			},
			&cli.Command{
				Name:  "update",
				Usage: "replace the metadata of a certificate",
				Flags: []cli.Flag{flagID, flagMetadata},
				Action: func(cCtx *cli.Context) error {
					c, err := NewClientConfig(cCtx)
					if err != nil {
						return err
					}
					return c.Update(cCtx)
				},
			},
			&cli.Command{
				Name:  "get",
				Usage: "print the metadata of a certificate",
				Flags: []cli.Flag{flagID},
				Action: func(cCtx *cli.Context) error {
					c, err := NewClientConfig(cCtx)
					if err != nil {
						return err
					}
					return c.Get(cCtx)
				},
			},
			&cli.Command{
				Name:  "descriptor",
				Usage: "print the descriptor of a certificate and its decoded document",
				Flags: []cli.Flag{flagID},
				Action: func(cCtx *cli.Context) error {
					c, err := NewClientConfig(cCtx)
					if err != nil {
						return err
					}
					return c.Descriptor(cCtx)
				},
			},
			&cli.Command{
				Name:  "account",
				Usage: "print the token-bound account of a certificate",
				Flags: []cli.Flag{flagID},
				Action: func(cCtx *cli.Context) error {
					c, err := NewClientConfig(cCtx)
					if err != nil {
						return err
					}
					return c.Account(cCtx)
				},
			},
			&cli.Command{
				Name:        "derive-account",
				Usage:       "compute a token-bound account address offline",
				Description: "Computes the ERC-6551 CREATE2 address without contacting the server or a node.",
				Flags: []cli.Flag{
					flagID,
					flagSalt,
					flags.AccountRegistryFlag,
					flags.AccountImplementationFlag,
					flags.TokenContractFlag,
					flags.ChainIDFlag,
				},
				Action: deriveAccount,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type Client struct {
	Provider api.CertificateProvider
}

func NewClientConfig(cCtx *cli.Context) (*Client, error) {
	client := clients.NewCertificateClient(cCtx.String(flags.ServerAddrFlag.Name), nil)

	if keyHex := cCtx.String(flags.AdminKeyFlag.Name); keyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("could not parse admin key: %w", err)
		}
		client = clients.NewCertificateClient(cCtx.String(flags.ServerAddrFlag.Name), key)
	}

	return &Client{Provider: client}, nil
}

func (c *Client) Issue(cCtx *cli.Context) error {
	id, err := interfaces.ParseCertificateID(cCtx.String(flagID.Name))
	if err != nil {
		return err
	}
	recipient := cCtx.String(flagRecipient.Name)
	if !ethcommon.IsHexAddress(recipient) {
		return fmt.Errorf("invalid recipient %q", recipient)
	}
	metadata, err := readMetadata(cCtx.String(flagMetadata.Name))
	if err != nil {
		return err
	}

	cert, err := c.Provider.Issue(api.IssueRequest{
		ID:        id,
		Recipient: ethcommon.HexToAddress(recipient),
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("issuance failed: %w", err)
	}
	return printJSON(cert)
}

func (c *Client) Update(cCtx *cli.Context) error {
	id, err := interfaces.ParseCertificateID(cCtx.String(flagID.Name))
	if err != nil {
		return err
	}
	metadata, err := readMetadata(cCtx.String(flagMetadata.Name))
	if err != nil {
		return err
	}

	if err := c.Provider.Update(id, metadata); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Println("metadata updated")
	return nil
}

func (c *Client) Get(cCtx *cli.Context) error {
	id, err := interfaces.ParseCertificateID(cCtx.String(flagID.Name))
	if err != nil {
		return err
	}
	resp, err := c.Provider.Get(id)
	if err != nil {
		return fmt.Errorf("metadata request failed: %w", err)
	}
	return printJSON(resp)
}

func (c *Client) Descriptor(cCtx *cli.Context) error {
	id, err := interfaces.ParseCertificateID(cCtx.String(flagID.Name))
	if err != nil {
		return err
	}
	resp, err := c.Provider.Descriptor(id)
	if err != nil {
		return fmt.Errorf("descriptor request failed: %w", err)
	}
	return printJSON(resp)
}

func (c *Client) Account(cCtx *cli.Context) error {
	id, err := interfaces.ParseCertificateID(cCtx.String(flagID.Name))
	if err != nil {
		return err
	}
	resp, err := c.Provider.Account(id)
	if err != nil {
		return fmt.Errorf("account request failed: %w", err)
	}
	return printJSON(resp)
}

func deriveAccount(cCtx *cli.Context) error {
	id, err := interfaces.ParseCertificateID(cCtx.String(flagID.Name))
	if err != nil {
		return err
	}
	salt, ok := new(big.Int).SetString(cCtx.String(flagSalt.Name), 0)
	if !ok || salt.Sign() < 0 {
		return fmt.Errorf("invalid salt %q", cCtx.String(flagSalt.Name))
	}

	addrs := map[string]ethcommon.Address{}
	for _, f := range []*cli.StringFlag{flags.AccountRegistryFlag, flags.AccountImplementationFlag, flags.TokenContractFlag} {
		value := cCtx.String(f.Name)
		if !ethcommon.IsHexAddress(value) {
			return fmt.Errorf("invalid %s: %q is not an address", f.Name, value)
		}
		addrs[f.Name] = ethcommon.HexToAddress(value)
	}

	account, err := accounts.ComputeAddress(addrs[flags.AccountRegistryFlag.Name], interfaces.AccountRequest{
		Implementation: addrs[flags.AccountImplementationFlag.Name],
		ChainID:        big.NewInt(cCtx.Int64(flags.ChainIDFlag.Name)),
		TokenContract:  addrs[flags.TokenContractFlag.Name],
		TokenID:        id,
		Salt:           salt,
	})
	if err != nil {
		return fmt.Errorf("could not derive account: %w", err)
	}

	return printJSON(api.AccountResponse{ID: id, BoundAccount: account})
}

func readMetadata(path string) (interfaces.LandMetadata, error) {
	var metadata interfaces.LandMetadata

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return metadata, fmt.Errorf("could not open metadata file: %w", err)
		}
		defer f.Close()
		r = f
	}

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&metadata); err != nil {
		return metadata, fmt.Errorf("could not parse metadata: %w", err)
	}
	return metadata, nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
