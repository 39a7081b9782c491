package wire

// SlabInstruction is any of the discriminator-specific body types decoded
// from an instruction buffer. This package is a library, not an embedded
// program, so DecodeSlabInstruction returns the decoded body directly
// instead of dispatching into a handler.
type SlabInstruction struct {
	Discriminator uint8
	Reserve       *ReserveBody
	Commit        *CommitBody
	Cancel        *CancelBody
	BatchOpen     *BatchOpenBody
	Initialize    *InitializeBody
	AddInstrument *AddInstrumentBody
	UpdateFunding *UpdateFundingBody
	Liquidation   *LiquidationBody

	InsuranceInit             *InsuranceInitBody
	InsuranceContribute       *InsuranceAmountBody
	InsuranceInitiateWithdraw *InsuranceAmountBody
	InsuranceCompleteWithdraw *InsuranceCompleteWithdrawBody
	InsuranceCancelWithdraw   *InsuranceCancelWithdrawBody
	InsuranceUpdateConfig     *InsuranceUpdateConfigBody
}

// DecodeSlabInstruction reads a 1-byte discriminator off buf and decodes the
// remainder as that discriminator's fixed-layout body. Trailing
// bytes beyond the expected body length are an error: a buffer built by a
// mismatched encoder is exactly the bug this check catches.
func DecodeSlabInstruction(buf []byte) (SlabInstruction, error) {
	if len(buf) < 1 {
		return SlabInstruction{}, ErrBufferTooShort
	}
	disc := buf[0]
	body := buf[1:]
	instr := SlabInstruction{Discriminator: disc}

	switch disc {
	case SlabReserve:
		b, err := DecodeReserveBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != reserveBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.Reserve = &b
	case SlabCommit:
		b, err := DecodeCommitBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != commitBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.Commit = &b
	case SlabCancel:
		b, err := DecodeCancelBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != cancelBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.Cancel = &b
	case SlabBatchOpen:
		b, err := DecodeBatchOpenBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != batchOpenBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.BatchOpen = &b
	case SlabInitialize:
		b, err := DecodeInitializeBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != initializeBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.Initialize = &b
	case SlabAddInstrument:
		b, err := DecodeAddInstrumentBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != addInstrumentBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.AddInstrument = &b
	case SlabUpdateFunding:
		b, err := DecodeUpdateFundingBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != updateFundingBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.UpdateFunding = &b
	case SlabLiquidation:
		b, err := DecodeLiquidationBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != liquidationBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.Liquidation = &b
	case SlabInsuranceInit:
		b, err := DecodeInsuranceInitBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != insuranceInitBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.InsuranceInit = &b
	case SlabInsuranceContribute:
		b, err := DecodeInsuranceAmountBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != insuranceAmountBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.InsuranceContribute = &b
	case SlabInsuranceInitiateWithdraw:
		b, err := DecodeInsuranceAmountBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != insuranceAmountBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.InsuranceInitiateWithdraw = &b
	case SlabInsuranceCompleteWithdraw:
		if len(body) != 0 {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.InsuranceCompleteWithdraw = &InsuranceCompleteWithdrawBody{}
	case SlabInsuranceCancelWithdraw:
		if len(body) != 0 {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.InsuranceCancelWithdraw = &InsuranceCancelWithdrawBody{}
	case SlabInsuranceUpdateConfig:
		b, err := DecodeInsuranceUpdateConfigBody(body)
		if err != nil {
			return SlabInstruction{}, err
		}
		if len(body) != insuranceUpdateConfigBodyLen {
			return SlabInstruction{}, ErrTrailingBytes
		}
		instr.InsuranceUpdateConfig = &b
	default:
		return SlabInstruction{}, ErrUnknownDiscriminator
	}
	return instr, nil
}

// EncodeSlabInstruction prepends disc to body's encoded bytes, the
// inverse of DecodeSlabInstruction.
func EncodeSlabInstruction(disc uint8, body interface{ Encode() []byte }) []byte {
	encoded := body.Encode()
	buf := make([]byte, 1+len(encoded))
	buf[0] = disc
	copy(buf[1:], encoded)
	return buf
}
