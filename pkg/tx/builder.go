package tx

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Tx
}

// NewBuilder creates a new transaction builder for the given chain.
func NewBuilder(chainID string) *Builder {
	return &Builder{tx: New(chainID)}
}

// SetCode adds the code section and commits the header to it.
func (b *Builder) SetCode(code []byte) *Builder {
	b.tx.SetCode(code)
	return b
}

// SetData adds the data section and commits the header to it.
func (b *Builder) SetData(data []byte) *Builder {
	b.tx.SetData(data)
	return b
}

// AddExtraData adds an auxiliary data section.
func (b *Builder) AddExtraData(data []byte) *Builder {
	b.tx.AddSection(Section{Kind: SectionExtraData, Payload: data})
	return b
}

// AddShieldedBuilder attaches local proof-building metadata. The section is
// stripped by ProtocolFilter before anything is signed or submitted.
func (b *Builder) AddShieldedBuilder(meta []byte) *Builder {
	b.tx.AddSection(Section{Kind: SectionShieldedBuilder, Payload: meta})
	return b
}

// SetExpiration sets the unix time after which the transaction is invalid.
func (b *Builder) SetExpiration(unix int64) *Builder {
	b.tx.Header.Expiration = unix
	return b
}

// SetTimestamp overrides the creation timestamp.
func (b *Builder) SetTimestamp(unix int64) *Builder {
	b.tx.Header.Timestamp = unix
	return b
}

// SetWrapper sets the fee data signed by the fee payer.
func (b *Builder) SetWrapper(w WrapperHeader) *Builder {
	b.tx.Header.Wrapper = &w
	return b
}

// Build returns the constructed transaction.
// Does NOT validate: call tx.Validate() separately.
func (b *Builder) Build() *Tx {
	return b.tx
}
