package xbridge

import "github.com/sirupsen/logrus"

// TransferStarted is the standard event emitted after an adapter
// successfully dispatches the source-chain leg of a transfer.
type TransferStarted struct {
	TransactionID      TxID             `json:"transaction_id"`
	BridgeName         string           `json:"bridge_name"`
	Integrator         string           `json:"integrator,omitempty"`
	Receiver           Address          `json:"receiver"`
	SendingAssetID     AssetID          `json:"sending_asset_id"`
	MinAmount          AmountBlockchain `json:"min_amount"`
	DestinationChainID ChainID          `json:"destination_chain_id"`
	HasSourceSwaps     bool             `json:"has_source_swaps"`
	HasDestinationCall bool             `json:"has_destination_call"`
}

// NewTransferStarted builds the event from the envelope. MinAmount is
// passed separately as the effective bridged amount may have been rebound
// by the swap engine.
func NewTransferStarted(req *BridgeRequest, amount AmountBlockchain) *TransferStarted {
	return &TransferStarted{
		TransactionID:      req.TransactionID,
		BridgeName:         req.BridgeName,
		Integrator:         req.Integrator,
		Receiver:           req.Receiver,
		SendingAssetID:     req.SendingAssetID,
		MinAmount:          amount,
		DestinationChainID: req.DestinationChainID,
		HasSourceSwaps:     req.HasSourceSwaps,
		HasDestinationCall: req.HasDestinationCall,
	}
}

func (ev *TransferStarted) LogFields() logrus.Fields {
	return logrus.Fields{
		"transaction_id":       ev.TransactionID.String(),
		"bridge":               ev.BridgeName,
		"receiver":             ev.Receiver,
		"sending_asset":        ev.SendingAssetID,
		"amount":               ev.MinAmount.String(),
		"destination_chain_id": ev.DestinationChainID,
	}
}
