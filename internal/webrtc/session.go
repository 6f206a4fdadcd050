package webrtc

import (
	"context"
	"fmt"

	"github.com/pion/sdp/v3"
	pion "github.com/pion/webrtc/v4"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

// answerOffer runs the non-trickle SDP exchange both WHIP and WHEP use: set
// the remote offer, create an answer, and wait for ICE gathering so the
// answer carries all candidates.
func answerOffer(ctx context.Context, pc *pion.PeerConnection, offerSDP string) (string, error) {
	offer := pion.SessionDescription{
		Type: pion.SDPTypeOffer,
		SDP:  offerSDP,
	}
	if err := pc.SetRemoteDescription(offer); err != nil {
		return "", fmt.Errorf("set remote description: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return "", fmt.Errorf("create answer: %w", err)
	}

	gatherComplete := pion.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		return "", fmt.Errorf("set local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return "", fmt.Errorf("ice gathering: %w", ctx.Err())
	}

	return pc.LocalDescription().SDP, nil
}

// validateOffer parses the SDP and checks it carries at least one media
// section. Returns the media section count.
func validateOffer(offerSDP string) (int, error) {
	parsed := &sdp.SessionDescription{}
	if err := parsed.Unmarshal([]byte(offerSDP)); err != nil {
		return 0, &domain.ValidationError{Field: "sdp", Reason: "malformed session description"}
	}
	if len(parsed.MediaDescriptions) == 0 {
		return 0, &domain.ValidationError{Field: "sdp", Reason: "offer has no media sections"}
	}
	return len(parsed.MediaDescriptions), nil
}
