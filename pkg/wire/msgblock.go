package wire

import "github.com/suffix-labs/btcwire/pkg/chainhash"

// MsgBlock is a block: a header followed by its transactions. It is the
// payload of the "block" message.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// NewMsgBlock returns a block with the given header and no transactions.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{Header: *header}
}

// AddTransaction appends tx.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash returns the hash of the block header.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns the identifiers of every transaction, in block order.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(msg.Transactions))
	for i, tx := range msg.Transactions {
		hashes[i] = tx.TxHash()
	}
	return hashes
}

// Command implements Message.
func (msg *MsgBlock) Command() string {
	return CmdBlock
}

// Encode writes the header, the transaction count and every transaction.
func (msg *MsgBlock) Encode(s Sink) error {
	if err := msg.Header.Encode(s); err != nil {
		return err
	}
	return WriteSequence(s, msg.Transactions, func(s Sink, tx **MsgTx) error {
		return (*tx).Encode(s)
	})
}

// Decode reads a block. The transaction count is checked against
// limits.MaxBlockTxs before any transaction is decoded. On error msg is
// left unchanged.
func (msg *MsgBlock) Decode(src Source, limits Limits) error {
	var header BlockHeader
	if err := header.Decode(src, limits); err != nil {
		return err
	}

	txs, err := ReadSequence(src, limits, limits.MaxBlockTxs, "transaction",
		func(src Source, tx **MsgTx) error {
			var t MsgTx
			if err := t.Decode(src, limits); err != nil {
				return err
			}
			*tx = &t
			return nil
		})
	if err != nil {
		return err
	}

	msg.Header = header
	msg.Transactions = txs
	return nil
}

// SerializeSize returns the size of Encode's output.
func (msg *MsgBlock) SerializeSize() int {
	n := BlockHeaderLen + CompactSizeLen(uint64(len(msg.Transactions)))
	for _, tx := range msg.Transactions {
		n += tx.SerializeSize()
	}
	return n
}

// Bytes returns the serialized block.
func (msg *MsgBlock) Bytes() ([]byte, error) {
	buf := NewEncodeBuffer(msg.SerializeSize())
	if err := msg.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBlock decodes a block that must span all of b.
func DecodeBlock(b []byte, limits Limits) (*MsgBlock, error) {
	var blk MsgBlock
	if err := decodeAll(b, limits, &blk); err != nil {
		return nil, err
	}
	return &blk, nil
}

// CalcMerkleRoot folds transaction identifiers into a merkle root. Each
// level pairs adjacent hashes and double hashes their concatenation; an odd
// hash out is paired with itself. No hashes yields the zero hash.
func CalcMerkleRoot(hashes []chainhash.Hash) chainhash.Hash {
	if len(hashes) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(hashes))
	copy(level, hashes)

	var pair [chainhash.HashSize * 2]byte
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			copy(pair[:chainhash.HashSize], level[i][:])
			copy(pair[chainhash.HashSize:], level[i+1][:])
			next = append(next, chainhash.DoubleHashH(pair[:]))
		}
		level = next
	}
	return level[0]
}
