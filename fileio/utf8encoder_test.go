package fileio

import "testing"

func TestUTF8EncoderRoundTrips(t *testing.T) {
	e := NewUTF8Encoder()
	in := []rune("héllo, 世界")

	buf := make([]byte, 64)
	result, written, consumed := e.FromUnicode(buf, in)
	if result != ResultCompleted {
		t.Fatalf("FromUnicode result = %v, want ResultCompleted", result)
	}
	if consumed != len(in) {
		t.Fatalf("FromUnicode consumed %d runes, want %d", consumed, len(in))
	}

	out := make([]rune, 64)
	result, runesWritten, bytesConsumed := e.ToUnicode(out, buf[:written])
	if result != ResultCompleted {
		t.Fatalf("ToUnicode result = %v, want ResultCompleted", result)
	}
	if bytesConsumed != written {
		t.Fatalf("ToUnicode consumed %d bytes, want %d", bytesConsumed, written)
	}
	if got := string(out[:runesWritten]); got != string(in) {
		t.Fatalf("round trip = %q, want %q", got, string(in))
	}
}

func TestUTF8EncoderFromUnicodeInsufficientBuffer(t *testing.T) {
	e := NewUTF8Encoder()
	buf := make([]byte, 1) // fits only one ASCII rune
	result, written, consumed := e.FromUnicode(buf, []rune("ab"))
	if result != ResultInsufficientBuffer {
		t.Fatalf("result = %v, want ResultInsufficientBuffer", result)
	}
	if written != 1 || consumed != 1 {
		t.Fatalf("written=%d consumed=%d, want 1,1", written, consumed)
	}
}

func TestUTF8EncoderToUnicodeMalformedInputFailsUnderPolicy(t *testing.T) {
	e := NewUTF8Encoder()
	e.SetSubstitutionPolicy(SubstitutionPolicyFail)
	out := make([]rune, 8)
	invalid := []byte{'a', 0xff, 'b'}
	result, written, consumed := e.ToUnicode(out, invalid)
	if result != ResultMalformedInput {
		t.Fatalf("result = %v, want ResultMalformedInput", result)
	}
	if written != 1 || consumed != 1 {
		t.Fatalf("expected decoding to stop right before the bad byte, got written=%d consumed=%d", written, consumed)
	}
}

func TestUTF8EncoderProperties(t *testing.T) {
	e := NewUTF8Encoder()
	p := e.Properties()
	if p.Name != "UTF-8" || p.MIB != 106 {
		t.Errorf("Properties() = %+v, want {UTF-8 106}", p)
	}
}
