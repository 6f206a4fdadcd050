package webrtc

// H264 NALU types relevant for keyframe detection.
const (
	naluTypeIDR   = 5
	naluTypeSPS   = 7
	naluTypeSTAPA = 24
	naluTypeFUA   = 28
)

// IsKeyframe reports whether an RTP H264 payload carries (part of) a
// keyframe: an IDR slice or SPS, directly, inside a STAP-A aggregate, or as
// the starting fragment of a FU-A. Non-starting FU-A fragments return false
// even for IDR data; the caller only needs to spot where a decoder can
// start.
func IsKeyframe(payload []byte) bool {
	if len(payload) < 1 {
		return false
	}

	naluType := payload[0] & 0x1f

	switch {
	case naluType == naluTypeIDR || naluType == naluTypeSPS:
		return true

	case naluType == naluTypeSTAPA:
		return stapaContainsKeyframe(payload)

	case naluType == naluTypeFUA:
		if len(payload) < 2 {
			return false
		}
		fuHeader := payload[1]
		start := fuHeader&0x80 != 0
		return start && fuHeader&0x1f == naluTypeIDR

	default:
		return false
	}
}

func stapaContainsKeyframe(payload []byte) bool {
	offset := 1 // skip STAP-A header byte

	for offset+2 <= len(payload) {
		size := int(payload[offset])<<8 | int(payload[offset+1])
		offset += 2
		if size == 0 || offset+size > len(payload) {
			break
		}
		t := payload[offset] & 0x1f
		if t == naluTypeIDR || t == naluTypeSPS {
			return true
		}
		offset += size
	}
	return false
}
