package xbridge

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	xbhex "github.com/cordialsys/xbridge/pkg/hex"
)

// TxID is the 32-byte caller-chosen identifier of a logical transfer.
// It is used for idempotency and tracing; uniqueness is the caller's
// responsibility.
type TxID [32]byte

func NewTxID(bz []byte) (TxID, error) {
	var id TxID
	if len(bz) != 32 {
		return id, fmt.Errorf("expected transaction id length 32, got length %v", len(bz))
	}
	copy(id[:], bz)
	return id, nil
}

func NewTxIDFromHex(str string) (TxID, error) {
	str = strings.TrimPrefix(str, "0x")
	bz, err := hex.DecodeString(str)
	if err != nil {
		return TxID{}, err
	}
	return NewTxID(bz)
}

func (id TxID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id TxID) IsZero() bool {
	return id == TxID{}
}

var _ json.Marshaler = TxID{}
var _ json.Unmarshaler = &TxID{}

func (id TxID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *TxID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := NewTxIDFromHex(str)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// FixedWidthReceiver is a 32-byte destination receiver for chains that do
// not use account-model addresses. See the receiver package for encoding.
type FixedWidthReceiver [32]byte

func (r FixedWidthReceiver) String() string {
	return "0x" + hex.EncodeToString(r[:])
}

func (r FixedWidthReceiver) IsZero() bool {
	return r == FixedWidthReceiver{}
}

// BridgeRequest is the canonical envelope shared by every adapter.
// It is created once per call and must not be mutated after validation.
type BridgeRequest struct {
	TransactionID TxID `json:"transaction_id" yaml:"transaction_id"`

	// Attribution. BridgeName selects the adapter and must be set.
	BridgeName string  `json:"bridge_name" yaml:"bridge_name"`
	Integrator string  `json:"integrator,omitempty" yaml:"integrator,omitempty"`
	Referrer   Address `json:"referrer,omitempty" yaml:"referrer,omitempty"`

	// SendingAssetID is the asset being transferred on the source chain.
	// NativeAssetID denotes the native asset.
	SendingAssetID AssetID `json:"sending_asset_id" yaml:"sending_asset_id"`

	// Receiver is the destination recipient, or NonEVMReceiver when the
	// real receiver is carried in adapter parameters as a fixed-width value.
	Receiver Address `json:"receiver" yaml:"receiver"`

	// MinAmount is the amount committed on the source chain, > 0.
	MinAmount AmountBlockchain `json:"min_amount" yaml:"min_amount"`

	DestinationChainID ChainID `json:"destination_chain_id" yaml:"destination_chain_id"`

	HasSourceSwaps     bool `json:"has_source_swaps" yaml:"has_source_swaps"`
	HasDestinationCall bool `json:"has_destination_call" yaml:"has_destination_call"`
}

// SwapStep is one ordered unit of pre-bridge conversion. Steps execute
// strictly in order; each either fully succeeds or aborts the request.
type SwapStep struct {
	// CallTarget is the exchange contract invoked with CallPayload.
	CallTarget Address `json:"call_target" yaml:"call_target"`
	// ApprovalTarget is granted the InputAmount allowance before the call.
	ApprovalTarget Address `json:"approval_target" yaml:"approval_target"`

	InputAsset  AssetID          `json:"input_asset" yaml:"input_asset"`
	OutputAsset AssetID          `json:"output_asset" yaml:"output_asset"`
	InputAmount AmountBlockchain `json:"input_amount" yaml:"input_amount"`
	CallPayload xbhex.Hex        `json:"call_payload" yaml:"call_payload"`

	// RequiresDeposit pulls InputAmount from the caller into custody
	// before the step runs.
	RequiresDeposit bool `json:"requires_deposit" yaml:"requires_deposit"`
}
