package main

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	passwordTerminal "golang.org/x/crypto/ssh/terminal"

	"github.com/frostline/fc4tx/node/types"
	"github.com/frostline/fc4tx/participant"
)

// terminalCommand holds a description of a command and its handler
type terminalCommand struct {
	commandHandler func() error
	description    string
}

// terminal a basic implementation of a prompt
type terminal struct {
	reader   *bufio.Reader
	machine  *participant.Machine
	commands map[string]*terminalCommand

	currentCommand            string
	stopDroppingSensitiveData chan bool
}

func NewTerminal(machine *participant.Machine) *terminal {
	t := terminal{
		bufio.NewReader(os.Stdin),
		machine,
		make(map[string]*terminalCommand),
		"",
		make(chan bool),
	}
	t.addCommand("handle_operation", &terminalCommand{
		commandHandler: t.handleOperationCommand,
		description:    "reads an operation from a file, processes it and writes the result next to it",
	})
	t.addCommand("help", &terminalCommand{
		commandHandler: t.helpCommand,
		description:    "shows available commands",
	})
	t.addCommand("deal_key_shares", &terminalCommand{
		commandHandler: t.dealKeySharesCommand,
		description:    "deals key shares for a roster and writes the foreign shares to files",
	})
	t.addCommand("import_key_share", &terminalCommand{
		commandHandler: t.importKeyShareCommand,
		description:    "imports this participant's key share from a file",
	})
	t.addCommand("show_group_key", &terminalCommand{
		commandHandler: t.showGroupKeyCommand,
		description:    "shows the group public key of a ceremony",
	})
	t.addCommand("set_seed", &terminalCommand{
		commandHandler: t.setSeedCommand,
		description:    "restores the machine seed from a mnemonic",
	})
	t.addCommand("replay_operations_log", &terminalCommand{
		commandHandler: t.replayOperationLogCommand,
		description:    "replays the operation log for a given ceremony",
	})
	t.addCommand("drop_operations_log", &terminalCommand{
		commandHandler: t.dropOperationLogCommand,
		description:    "drops the operation log for a given ceremony",
	})
	t.addCommand("verify_signature", &terminalCommand{
		commandHandler: t.verifySignCommand,
		description:    "verifies a reconstructed group signature of a message",
	})
	t.addCommand("exit", &terminalCommand{
		commandHandler: func() error {
			log.Fatal("interrupted")
			return nil
		},
		description: "stops the machine",
	})
	return &t
}

func (t *terminal) addCommand(name string, command *terminalCommand) {
	t.commands[name] = command
}

func (t *terminal) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.Trim(line, "\n"), nil
}

func (t *terminal) handleOperationCommand() error {
	operationPath, err := t.readLine("> Enter the path to the operation file: ")
	if err != nil {
		return err
	}

	operationBz, err := ioutil.ReadFile(operationPath)
	if err != nil {
		return fmt.Errorf("failed to read operation file: %w", err)
	}

	var operation types.Operation
	if err := json.Unmarshal(operationBz, &operation); err != nil {
		return fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	processedOperation, err := t.machine.ProcessOperation(operation, true)
	if err != nil {
		return fmt.Errorf("failed to process operation: %w", err)
	}

	processedOperationBz, err := json.Marshal(processedOperation)
	if err != nil {
		return fmt.Errorf("failed to marshal processed operation: %w", err)
	}

	resultPath := fmt.Sprintf("%s-result.json", strings.TrimSuffix(operationPath, ".json"))
	if err := ioutil.WriteFile(resultPath, processedOperationBz, 0600); err != nil {
		return fmt.Errorf("failed to write result operation: %w", err)
	}

	fmt.Printf("The operation was handled successfully, the result was saved to: %s\n", resultPath)
	return nil
}

func (t *terminal) dealKeySharesCommand() error {
	ceremonyID, err := t.readLine("> Enter the CeremonyID: ")
	if err != nil {
		return err
	}

	thresholdInput, err := t.readLine("> Enter the threshold: ")
	if err != nil {
		return err
	}
	threshold, err := strconv.Atoi(thresholdInput)
	if err != nil {
		return fmt.Errorf("failed to parse threshold: %w", err)
	}

	participantsInput, err := t.readLine("> Enter the participants (comma-separated usernames): ")
	if err != nil {
		return err
	}
	participants := strings.Split(participantsInput, ",")
	for i := range participants {
		participants[i] = strings.TrimSpace(participants[i])
	}

	sharesFolder, err := t.readLine("> Enter a folder to save the foreign shares: ")
	if err != nil {
		return err
	}

	shares, err := t.machine.DealKeyShares(ceremonyID, threshold, participants)
	if err != nil {
		return fmt.Errorf("failed to deal key shares: %w", err)
	}

	for _, share := range shares {
		if share.Name == t.machine.Username() {
			continue
		}
		shareBz, err := participant.MarshalKeyShare(share)
		if err != nil {
			return fmt.Errorf("failed to marshal key share: %w", err)
		}
		sharePath := filepath.Join(sharesFolder, fmt.Sprintf("fc4tx_share_%s_%s.json", ceremonyID, share.Name))
		if err := ioutil.WriteFile(sharePath, shareBz, 0600); err != nil {
			return fmt.Errorf("failed to write key share: %w", err)
		}
		fmt.Printf("Share for %s was saved to: %s\n", share.Name, sharePath)
	}

	fmt.Println("Carry each share to its owner over a secure channel and delete the files afterwards.")
	return nil
}

func (t *terminal) importKeyShareCommand() error {
	ceremonyID, err := t.readLine("> Enter the CeremonyID: ")
	if err != nil {
		return err
	}

	sharePath, err := t.readLine("> Enter the path to the key share file: ")
	if err != nil {
		return err
	}

	shareBz, err := ioutil.ReadFile(sharePath)
	if err != nil {
		return fmt.Errorf("failed to read key share file: %w", err)
	}

	share, err := participant.UnmarshalKeyShare(shareBz)
	if err != nil {
		return fmt.Errorf("failed to unmarshal key share: %w", err)
	}

	if err := t.machine.ImportKeyShare(ceremonyID, share); err != nil {
		return fmt.Errorf("failed to import key share: %w", err)
	}

	fmt.Println("The key share was imported successfully, delete the file now.")
	return nil
}

func (t *terminal) showGroupKeyCommand() error {
	ceremonyID, err := t.readLine("> Enter the CeremonyID: ")
	if err != nil {
		return err
	}

	groupKey, err := t.machine.GroupKey(ceremonyID)
	if err != nil {
		return fmt.Errorf("failed to get group key: %w", err)
	}
	fmt.Println(groupKey)
	return nil
}

func (t *terminal) setSeedCommand() error {
	mnemonic, err := t.readLine("> Enter the mnemonic: ")
	if err != nil {
		return err
	}
	return t.machine.SetBaseSeed(mnemonic)
}

func (t *terminal) replayOperationLogCommand() error {
	ceremonyID, err := t.readLine("> Enter the CeremonyID: ")
	if err != nil {
		return err
	}

	if err := t.machine.ReplayOperationsLog(ceremonyID); err != nil {
		return fmt.Errorf("failed to ReplayOperationsLog: %w", err)
	}
	return nil
}

func (t *terminal) dropOperationLogCommand() error {
	ceremonyID, err := t.readLine("> Enter the CeremonyID: ")
	if err != nil {
		return err
	}

	if err := t.machine.DropOperationsLog(ceremonyID); err != nil {
		return fmt.Errorf("failed to DropOperationsLog: %w", err)
	}
	return nil
}

func (t *terminal) verifySignCommand() error {
	ceremonyID, err := t.readLine("> Enter the CeremonyID: ")
	if err != nil {
		return err
	}

	signature, err := t.readLine("> Enter the group signature (hex): ")
	if err != nil {
		return err
	}
	signatureDecoded, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	message, err := t.readLine("> Enter the message which was signed (base64): ")
	if err != nil {
		return err
	}
	messageDecoded, err := base64.StdEncoding.DecodeString(message)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	if err := t.machine.VerifySignature(ceremonyID, messageDecoded, signatureDecoded); err != nil {
		fmt.Printf("Signature is invalid: %v\n", err)
	} else {
		fmt.Println("Signature is correct!")
	}
	return nil
}

func (t *terminal) helpCommand() error {
	fmt.Println("Available commands:")
	for commandName, command := range t.commands {
		fmt.Printf("* %s - %s\n", commandName, command.description)
	}
	return nil
}

func (t *terminal) enterEncryptionPasswordIfNeeded() error {
	t.machine.Lock()
	defer t.machine.Unlock()

	if !t.machine.SensitiveDataRemoved() {
		return nil
	}

	fmt.Print("Enter encryption password: ")
	password, err := passwordTerminal.ReadPassword(syscall.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	t.machine.SetEncryptionKey(password)
	return nil
}

func (t *terminal) run() error {
	if err := t.enterEncryptionPasswordIfNeeded(); err != nil {
		return err
	}
	if err := t.helpCommand(); err != nil {
		return err
	}
	fmt.Println("Waiting for command...")
	for {
		fmt.Print(">>> ")
		command, err := t.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		clearCommand := strings.Trim(command, "\n")
		handler, ok := t.commands[clearCommand]
		if !ok {
			fmt.Printf("unknown command: %s\n", command)
			continue
		}
		if err = t.enterEncryptionPasswordIfNeeded(); err != nil {
			return err
		}
		t.machine.Lock()

		t.currentCommand = clearCommand
		if err := handler.commandHandler(); err != nil {
			fmt.Printf("failed to execute command %s: %v \n", command, err)
		}
		t.currentCommand = ""
		t.machine.Unlock()
	}
}

func (t *terminal) dropSensitiveDataByTicker(passExpiration time.Duration) {
	ticker := time.NewTicker(passExpiration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.machine.DropSensitiveData()
		case <-t.stopDroppingSensitiveData:
			return
		}
	}
}

var (
	passwordExpiration string
	dbPath             string
	username           string
)

func init() {
	flag.StringVar(&passwordExpiration, "password_expiration", "10m", "Expiration of the encryption password")
	flag.StringVar(&dbPath, "db_path", "fc4tx_participant_db", "Path to participant levelDB storage")
	flag.StringVar(&username, "username", "", "Username this participant signs under")
}

func main() {
	flag.Parse()

	if username == "" {
		log.Fatalf("username must be set")
	}

	passwordLifeDuration, err := time.ParseDuration(passwordExpiration)
	if err != nil {
		log.Fatalf("invalid password expiration syntax: %v", err)
	}

	machine, err := participant.NewMachine(dbPath, username)
	if err != nil {
		log.Fatalf("failed to init participant machine %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	t := NewTerminal(machine)
	go func() {
		for range c {
			fmt.Printf("Intercepting SIGINT, please type `exit` to stop the machine\n>>> ")
		}
	}()
	go t.dropSensitiveDataByTicker(passwordLifeDuration)
	if err = t.run(); err != nil {
		log.Fatalf(err.Error())
	}
}
