package node

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/frostline/fc4tx/ceremony"
	"github.com/frostline/fc4tx/fsm/state_machines"
	scf "github.com/frostline/fc4tx/fsm/state_machines/signing_ceremony_fsm"
	"github.com/frostline/fc4tx/fsm/types/requests"
	"github.com/frostline/fc4tx/mocks/nodeMocks"
	"github.com/frostline/fc4tx/mocks/serviceMocks"
	"github.com/frostline/fc4tx/mocks/storageMocks"
	"github.com/frostline/fc4tx/node/api/dto"
	"github.com/frostline/fc4tx/node/config"
	"github.com/frostline/fc4tx/node/modules/keystore"
	"github.com/frostline/fc4tx/node/modules/logger"
	"github.com/frostline/fc4tx/node/services"
	"github.com/frostline/fc4tx/node/types"
	"github.com/frostline/fc4tx/storage"
)

func TestNode_ProcessMessage(t *testing.T) {
	var (
		ctx  = context.Background()
		req  = require.New(t)
		ctrl = gomock.NewController(t)
	)
	defer ctrl.Finish()

	userName := "user_name"
	ceremonyID := "ceremony_id"
	state := nodeMocks.NewMockState(ctrl)
	keyStore := nodeMocks.NewMockKeyStore(ctrl)
	stg := storageMocks.NewMockStorage(ctrl)
	ceremonyService := serviceMocks.NewMockCeremonyService(ctrl)
	opService := serviceMocks.NewMockOperationService(ctrl)
	sigService := serviceMocks.NewMockSignatureService(ctrl)

	testNodeKeyPair := keystore.NewKeyPair()
	keyStore.EXPECT().LoadKeys(userName, "").Times(1).Return(testNodeKeyPair, nil)

	sp := services.ServiceProvider{}
	sp.SetLogger(logger.NewLogger(userName))
	sp.SetState(state)
	sp.SetKeyStore(keyStore)
	sp.SetStorage(stg)
	sp.SetCeremonyService(ceremonyService)
	sp.SetOperationService(opService)
	sp.SetSignatureService(sigService)

	// minimal config to make test
	cfg := config.Config{
		Username: userName,
	}

	node, err := NewNode(ctx, &cfg, &sp)
	req.NoError(err)

	t.Run("test_process_ceremony_start", func(t *testing.T) {
		fsmInstance, err := state_machines.Create(ceremonyID)
		req.NoError(err)
		ceremonyService.EXPECT().GetFSMInstance(ceremonyID, true).Times(1).Return(fsmInstance, nil)

		senderKeyPair := keystore.NewKeyPair()
		senderAddr := senderKeyPair.GetAddr()
		messageData := requests.CeremonyStartRequest{
			CeremonyID:      ceremonyID,
			UnsignedMessage: "deadbeef",
			GroupKey:        "8f40c5adb68f25624ae5b214ea767a6ec94d829d3d7b5e1ad1ba6f3e2138285f",
			Threshold:       2,
			Participants: []*requests.CeremonyParticipantEntry{
				{
					Username: senderAddr,
					PubKey:   senderKeyPair.Pub,
				},
				{
					Username: "second_participant",
					PubKey:   keystore.NewKeyPair().Pub,
				},
			},
			CreatedAt: time.Now(),
		}
		messageDataBz, err := json.Marshal(messageData)
		req.NoError(err)

		message := storage.Message{
			ID:         uuid.New().String(),
			CeremonyID: ceremonyID,
			Offset:     1,
			Event:      string(scf.EventCeremonyStart),
			Data:       messageDataBz,
			SenderAddr: senderAddr,
		}
		message.Signature = ed25519.Sign(senderKeyPair.Priv, message.Bytes())

		ceremonyService.EXPECT().SaveFSM(gomock.Any(), gomock.Any()).Times(1).Return(nil)
		opService.EXPECT().PutOperation(gomock.Any()).Times(1).DoAndReturn(func(operation *types.Operation) error {
			req.Equal(types.CommitmentAwait, operation.Type)
			req.Equal(ceremonyID, operation.CeremonyID)
			return nil
		})

		err = node.ProcessMessage(message)
		req.NoError(err)
		req.Equal(scf.StateCeremonyAwaitCommitments, fsmInstance.State())
	})

	t.Run("test_process_message_bad_signature", func(t *testing.T) {
		fsmInstance, err := state_machines.Create(ceremonyID)
		req.NoError(err)

		startRequest := requests.CeremonyStartRequest{
			CeremonyID:      ceremonyID,
			UnsignedMessage: "deadbeef",
			GroupKey:        "8f40c5adb68f25624ae5b214ea767a6ec94d829d3d7b5e1ad1ba6f3e2138285f",
			Threshold:       2,
			Participants: []*requests.CeremonyParticipantEntry{
				{Username: "P1", PubKey: keystore.NewKeyPair().Pub},
				{Username: "P2", PubKey: keystore.NewKeyPair().Pub},
			},
			CreatedAt: time.Now(),
		}
		_, _, err = fsmInstance.Do(scf.EventCeremonyStart, startRequest)
		req.NoError(err)

		ceremonyService.EXPECT().GetFSMInstance(ceremonyID, false).Times(1).Return(fsmInstance, nil)

		commitmentRequest := requests.CeremonyCommitmentConfirmationRequest{
			CeremonyID:        ceremonyID,
			ParticipantID:     "P1",
			HidingCommitment:  "8f40c5adb68f25624ae5b214ea767a6ec94d829d3d7b5e1ad1ba6f3e2138285f",
			BindingCommitment: "8f40c5adb68f25624ae5b214ea767a6ec94d829d3d7b5e1ad1ba6f3e2138285f",
			CreatedAt:         time.Now(),
		}
		commitmentRequestBz, err := json.Marshal(commitmentRequest)
		req.NoError(err)

		message := storage.Message{
			ID:         uuid.New().String(),
			CeremonyID: ceremonyID,
			Offset:     2,
			Event:      string(scf.EventCeremonyCommitmentReceived),
			Data:       commitmentRequestBz,
			SenderAddr: "P1",
			Signature:  []byte("not a valid signature"),
		}

		err = node.ProcessMessage(message)
		req.Error(err)
		req.Contains(err.Error(), "failed to verifyMessage")
	})
}

func TestNode_GetOperationsList(t *testing.T) {
	var (
		ctx  = context.Background()
		req  = require.New(t)
		ctrl = gomock.NewController(t)
	)
	defer ctrl.Finish()

	userName := "test_node"

	keyStore := nodeMocks.NewMockKeyStore(ctrl)
	testNodeKeyPair := keystore.NewKeyPair()
	keyStore.EXPECT().LoadKeys(userName, "").Times(1).Return(testNodeKeyPair, nil)

	state := nodeMocks.NewMockState(ctrl)
	stg := storageMocks.NewMockStorage(ctrl)
	opService := serviceMocks.NewMockOperationService(ctrl)

	sp := services.ServiceProvider{}
	sp.SetLogger(logger.NewLogger(userName))
	sp.SetState(state)
	sp.SetKeyStore(keyStore)
	sp.SetStorage(stg)
	sp.SetOperationService(opService)

	// minimal config to make test
	cfg := config.Config{
		Username: userName,
	}

	node, err := NewNode(ctx, &cfg, &sp)
	req.NoError(err)

	opService.EXPECT().GetOperations().Times(1).Return(map[string]*types.Operation{}, nil)
	operations, err := node.GetOperations()
	req.NoError(err)
	req.Len(operations, 0)

	operation := &types.Operation{
		ID:        "operation_id",
		Type:      types.CommitmentAwait,
		Payload:   []byte("operation_payload"),
		CreatedAt: time.Now(),
	}
	opService.EXPECT().GetOperations().Times(1).Return(
		map[string]*types.Operation{operation.ID: operation}, nil)
	operations, err = node.GetOperations()
	req.NoError(err)
	req.Len(operations, 1)
	req.Equal(operation, operations[operation.ID])
}

func TestNode_BuildSigningPackageDirect(t *testing.T) {
	var (
		ctx  = context.Background()
		req  = require.New(t)
		ctrl = gomock.NewController(t)
	)
	defer ctrl.Finish()

	userName := "test_node"

	keyStore := nodeMocks.NewMockKeyStore(ctrl)
	keyStore.EXPECT().LoadKeys(userName, "").Times(1).Return(keystore.NewKeyPair(), nil)

	state := nodeMocks.NewMockState(ctrl)
	stg := storageMocks.NewMockStorage(ctrl)
	ceremonyService := serviceMocks.NewMockCeremonyService(ctrl)

	sp := services.ServiceProvider{}
	sp.SetLogger(logger.NewLogger(userName))
	sp.SetState(state)
	sp.SetKeyStore(keyStore)
	sp.SetStorage(stg)
	sp.SetCeremonyService(ceremonyService)

	cfg := config.Config{
		Username: userName,
	}

	node, err := NewNode(ctx, &cfg, &sp)
	req.NoError(err)

	entries := []ceremony.CommitmentEntry{
		{Identifier: "P1", Commitment: ceremony.Commitment{Hiding: "aa", Binding: "bb"}},
		{Identifier: "P2", Commitment: ceremony.Commitment{Hiding: "cc", Binding: "dd"}},
	}

	// A request without a ceremony id builds from the supplied
	// commitments and never touches ceremony state.
	ceremonyService.EXPECT().BuildDirectSigningPackage("deadbeef", entries).Times(1).Return("abcdef", nil)

	signingPackage, err := node.BuildSigningPackage(&dto.BuildSigningPackageDTO{
		UnsignedTransaction: "deadbeef",
		Commitments:         entries,
	})
	req.NoError(err)
	req.Equal("abcdef", signingPackage)
}

func TestNode_StartCeremony(t *testing.T) {
	var (
		ctx  = context.Background()
		req  = require.New(t)
		ctrl = gomock.NewController(t)
	)
	defer ctrl.Finish()

	userName := "test_node"

	keyStore := nodeMocks.NewMockKeyStore(ctrl)
	testNodeKeyPair := keystore.NewKeyPair()
	keyStore.EXPECT().LoadKeys(userName, "").AnyTimes().Return(testNodeKeyPair, nil)

	state := nodeMocks.NewMockState(ctrl)
	stg := storageMocks.NewMockStorage(ctrl)

	sp := services.ServiceProvider{}
	sp.SetLogger(logger.NewLogger(userName))
	sp.SetState(state)
	sp.SetKeyStore(keyStore)
	sp.SetStorage(stg)

	cfg := config.Config{
		Username: userName,
	}

	node, err := NewNode(ctx, &cfg, &sp)
	req.NoError(err)

	stg.EXPECT().Send(gomock.Any()).Times(1).DoAndReturn(func(messages ...storage.Message) error {
		req.Len(messages, 1)
		req.Equal(string(scf.EventCeremonyStart), messages[0].Event)
		req.Equal(userName, messages[0].SenderAddr)
		req.True(ed25519.Verify(testNodeKeyPair.Pub, messages[0].Bytes(), messages[0].Signature))
		return nil
	})

	err = node.StartCeremony(&dto.StartCeremonyDTO{
		CeremonyID:      "ceremony_id",
		UnsignedMessage: "deadbeef",
		GroupKey:        "8f40c5adb68f25624ae5b214ea767a6ec94d829d3d7b5e1ad1ba6f3e2138285f",
		Threshold:       2,
		Participants: []types.Participant{
			{Username: "P1", PubKey: keystore.NewKeyPair().Pub},
			{Username: "P2", PubKey: keystore.NewKeyPair().Pub},
		},
	})
	req.NoError(err)

	// a roster smaller than the threshold must be refused before anything is sent
	err = node.StartCeremony(&dto.StartCeremonyDTO{
		CeremonyID:      "ceremony_id",
		UnsignedMessage: "deadbeef",
		GroupKey:        "8f40c5adb68f25624ae5b214ea767a6ec94d829d3d7b5e1ad1ba6f3e2138285f",
		Threshold:       2,
		Participants: []types.Participant{
			{Username: "P1", PubKey: keystore.NewKeyPair().Pub},
		},
	})
	req.Error(err)
}
