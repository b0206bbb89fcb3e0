package main

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"sort"

	"github.com/frostline/fc4tx/fsm/state_machines"
	httprequests "github.com/frostline/fc4tx/node/api/http_api/requests"
	"github.com/frostline/fc4tx/node/types"
)

type CeremonyParticipants []types.Participant

func (p CeremonyParticipants) Len() int           { return len(p) }
func (p CeremonyParticipants) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p CeremonyParticipants) Less(i, j int) bool { return p[i].Username < p[j].Username }

type OperationsResponse struct {
	ErrorMessage string                      `json:"error_message,omitempty"`
	Result       map[string]*types.Operation `json:"result"`
}

type OperationResponse struct {
	ErrorMessage string           `json:"error_message,omitempty"`
	Result       *types.Operation `json:"result"`
}

type SignaturesResponse struct {
	ErrorMessage string                         `json:"error_message,omitempty"`
	Result       []types.ReconstructedSignature `json:"result"`
}

type FSMDumpResponse struct {
	ErrorMessage string                  `json:"error_message,omitempty"`
	Result       *state_machines.FSMDump `json:"result"`
}

// calcStartCeremonyFileHash returns a hash of the ceremony proposal so
// that every participant can verify they agree to the same roster,
// threshold and message before confirming anything.
func calcStartCeremonyFileHash(req *httprequests.StartCeremonyForm) ([]byte, error) {
	participants := CeremonyParticipants(req.Participants)
	sort.Sort(participants)

	hashPayload := bytes.NewBuffer(nil)
	if _, err := hashPayload.Write([]byte(fmt.Sprintf("%d", req.Threshold))); err != nil {
		return nil, err
	}
	if _, err := hashPayload.Write([]byte(req.UnsignedMessage)); err != nil {
		return nil, err
	}
	if _, err := hashPayload.Write([]byte(req.GroupKey)); err != nil {
		return nil, err
	}
	for _, p := range participants {
		if _, err := hashPayload.Write([]byte(p.Username)); err != nil {
			return nil, err
		}
		if _, err := hashPayload.Write(p.PubKey); err != nil {
			return nil, err
		}
	}
	hash := md5.Sum(hashPayload.Bytes())
	return hash[:], nil
}

func getShortOperationDescription(operationType types.OperationType) string {
	switch operationType {
	case types.CommitmentAwait:
		return "produce a nonce commitment for the signing ceremony"
	case types.PartialSignatureAwait:
		return "produce a partial signature over the signing package"
	default:
		return "unknown operation"
	}
}
