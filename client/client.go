package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/cordialsys/restake"
	"github.com/cordialsys/restake/builder"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/sirupsen/logrus"
)

// Floor of the compute unit price, in micro-lamports, before recent fees are averaged in.
const MinPrioritizationFee = 100

// Client for a Solana JSON-RPC node, scoped to one deployment of the restake program.
type Client struct {
	SolClient  *rpc.Client
	ProgramID  solana.PublicKey
	Commitment rpc.CommitmentType
	// Traces raw JSON-RPC traffic at trace level.
	Interceptor *HttpInterceptor
	// Scales the compute unit price paid by recent transactions.
	Priority restake.Priority
}

// NewClient returns a new JSON-RPC Client to the Solana node
func NewClient(url string, programID solana.PublicKey) *Client {
	interceptor := NewHttpInterceptor()
	rpcClient := jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Transport: interceptor},
	})
	return &Client{
		SolClient:   rpc.NewWithCustomRPCClient(rpcClient),
		ProgramID:   programID,
		Commitment:  rpc.CommitmentFinalized,
		Interceptor: interceptor,
	}
}

func (client *Client) WithCommitment(commitment rpc.CommitmentType) *Client {
	if commitment != "" {
		client.Commitment = commitment
	}
	return client
}

func (client *Client) WithPriority(priority restake.Priority) *Client {
	client.Priority = priority
	return client
}

// FetchBaseInput looks up a recent blockhash and a compute unit price based on the
// fees recently paid to lock the given accounts.
func (client *Client) FetchBaseInput(ctx context.Context, accountsToLock ...solana.PublicKey) (*builder.TxInput, error) {
	txInput := &builder.TxInput{}

	recent, err := client.SolClient.GetLatestBlockhash(ctx, client.Commitment)
	if err != nil {
		return nil, fmt.Errorf("could not get latest blockhash: %v", err)
	}
	if recent == nil || recent.Value == nil {
		return nil, fmt.Errorf("error fetching latest blockhash")
	}
	txInput.RecentBlockHash = recent.Value.Blockhash

	multiplier, err := client.Priority.GetDefault()
	if err != nil {
		return nil, err
	}
	if len(accountsToLock) == 0 {
		txInput.PrioritizationFee = restake.NewAmountBlockchainFromUint64(MinPrioritizationFee).ApplyMultiplier(multiplier)
		return txInput, nil
	}
	fees, err := client.SolClient.GetRecentPrioritizationFees(ctx, solana.PublicKeySlice(accountsToLock))
	if err != nil {
		return nil, fmt.Errorf("could not lookup priority fees: %v", err)
	}
	count := uint64(0)
	sum := uint64(MinPrioritizationFee)
	for _, fee := range fees {
		if fee.PrioritizationFee > 0 {
			sum += fee.PrioritizationFee
			count += 1
		}
	}
	if count > 0 {
		txInput.PrioritizationFee = restake.NewAmountBlockchainFromUint64(sum / count)
	} else {
		txInput.PrioritizationFee = restake.NewAmountBlockchainFromUint64(MinPrioritizationFee)
	}
	txInput.PrioritizationFee = txInput.PrioritizationFee.ApplyMultiplier(multiplier)
	return txInput, nil
}

// FetchEpoch returns the current epoch at the client's commitment.
func (client *Client) FetchEpoch(ctx context.Context) (uint64, error) {
	info, err := client.SolClient.GetEpochInfo(ctx, client.Commitment)
	if err != nil {
		return 0, fmt.Errorf("could not get epoch info: %v", err)
	}
	return info.Epoch, nil
}

// FetchBalance returns the lamports held by an account, zero if it does not exist.
func (client *Client) FetchBalance(ctx context.Context, address solana.PublicKey) (restake.AmountBlockchain, error) {
	zero := restake.NewAmountBlockchainFromUint64(0)
	out, err := client.SolClient.GetBalance(ctx, address, client.Commitment)
	if err != nil {
		return zero, fmt.Errorf("failed to get balance for '%v': %v", address, err)
	}
	if out == nil {
		return zero, nil
	}
	return restake.NewAmountBlockchainFromUint64(out.Value), nil
}

// SubmitTx broadcasts a signed transaction and returns its signature.
func (client *Client) SubmitTx(ctx context.Context, tx *builder.Tx) (solana.Signature, error) {
	txData, err := tx.Serialize()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: encode transaction: %w", err)
	}

	sig, err := client.SolClient.SendEncodedTransactionWithOpts(
		ctx,
		base64.StdEncoding.EncodeToString(txData),
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: client.Commitment,
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("status", CheckError(err)).Debug("transaction rejected")
		return solana.Signature{}, err
	}
	logrus.WithField("signature", sig.String()).Info("submitted transaction")
	return sig, nil
}
