package tx

import "github.com/Klingon-tech/klingnet-sdk/pkg/cbor"

func encodeForTest(v any) ([]byte, error) { return cbor.Encode(v) }

func decodeForTest(data []byte, v any) error { return cbor.Decode(data, v) }
