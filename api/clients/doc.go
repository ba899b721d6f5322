/*
Package clients provides the Go client of the land certificate registry API.

CertificateClient signs administrator requests with the administrator's secp256k1 key
using github.com/flashbots/go-utils/signature, so the server can recover the caller
address from the X-Flashbots-Signature header.

# Example

	key, _ := crypto.HexToECDSA(adminKeyHex)
	client := clients.NewCertificateClient("http://localhost:8080", key)

	cert, err := client.Issue(api.IssueRequest{
	    ID:        interfaces.NewCertificateID(42),
	    Recipient: owner,
	    Metadata:  metadata,
	})

Read operations need no key:

	client := clients.NewCertificateClient("http://localhost:8080", nil)
	resp, err := client.Descriptor(interfaces.NewCertificateID(42))
*/
package clients
