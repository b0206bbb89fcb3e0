package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	httprequests "github.com/frostline/fc4tx/node/api/http_api/requests"
	"github.com/frostline/fc4tx/node/api/http_api/responses"
)

const (
	flagListenAddr = "listen_addr"
)

func init() {
	rootCmd.PersistentFlags().String(flagListenAddr, "localhost:8080", "Listen Address")
}

var rootCmd = &cobra.Command{
	Use:   "fc4tx_cli",
	Short: "fc4tx node cli utilities implementation",
}

func main() {
	rootCmd.AddCommand(
		getOperationsCommand(),
		exportOperationCommand(),
		handleProcessedOperationCommand(),
		startCeremonyCommand(),
		getHashOfStartCeremonyCommand(),
		postCommitmentCommand(),
		buildSigningPackageCommand(),
		postPartialSignatureCommand(),
		getUsernameCommand(),
		getPubKeyCommand(),
		getSignaturesCommand(),
		getSignatureCommand(),
		saveOffsetCommand(),
		getOffsetCommand(),
		showCeremonyStatusCommand(),
		getFSMListCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}

func getOperationsRequest(host string) (*OperationsResponse, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/getOperations", host))
	if err != nil {
		return nil, fmt.Errorf("failed to get operations: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var response OperationsResponse
	if err = json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	return &response, nil
}

func getOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_operations",
		Short: "returns all operations that should be processed on the participant machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}
			operations, err := getOperationsRequest(listenAddr)
			if err != nil {
				return fmt.Errorf("failed to get operations: %w", err)
			}
			if operations.ErrorMessage != "" {
				return fmt.Errorf("failed to get operations: %s", operations.ErrorMessage)
			}
			for _, operation := range operations.Result {
				fmt.Printf("Ceremony ID: %s\n", operation.CeremonyID)
				fmt.Printf("Operation ID: %s\n", operation.ID)
				fmt.Printf("Description: %s\n", getShortOperationDescription(operation.Type))
				fmt.Println("-----------------------------------------------------")
			}
			return nil
		},
	}
}

func getOperationRequest(host string, operationID string) (*OperationResponse, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/getOperation?operationID=%s", host, operationID))
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var response OperationResponse
	if err = json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	return &response, nil
}

func exportOperationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export_operation [operationID] [file_path]",
		Args:  cobra.ExactArgs(2),
		Short: "writes an operation to a file to be carried to the participant machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			operation, err := getOperationRequest(listenAddr, args[0])
			if err != nil {
				return fmt.Errorf("failed to get operation: %w", err)
			}
			if operation.ErrorMessage != "" {
				return fmt.Errorf("failed to get operation: %s", operation.ErrorMessage)
			}

			operationBz, err := json.Marshal(operation.Result)
			if err != nil {
				return fmt.Errorf("failed to marshal operation: %w", err)
			}
			if err := ioutil.WriteFile(args[1], operationBz, 0600); err != nil {
				return fmt.Errorf("failed to write operation file: %w", err)
			}

			fmt.Printf("Operation was saved to: %s\n", args[1])
			return nil
		},
	}
}

func handleProcessedOperationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "handle_processed_operation [file_path]",
		Args:  cobra.ExactArgs(1),
		Short: "reads a processed operation from a file and hands it to the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			data, err := ioutil.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read processed operation file: %w", err)
			}
			resp, err := rawPostRequest(fmt.Sprintf("http://%s/handleProcessedOperationJSON", listenAddr),
				"application/json", data)
			if err != nil {
				return fmt.Errorf("failed to handle processed operation: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to handle processed operation: %v", resp.ErrorMessage)
			}
			return nil
		},
	}
}

func rawGetRequest(url string) (*responses.BaseResponse, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body %w", err)
	}

	var response responses.BaseResponse
	if err = json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	return &response, nil
}

func rawPostRequest(url string, contentType string, data []byte) (*responses.BaseResponse, error) {
	resp, err := http.Post(url,
		contentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body %w", err)
	}

	var response responses.BaseResponse
	if err = json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	return &response, nil
}

func startCeremonyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start_ceremony [proposing_file]",
		Args:  cobra.ExactArgs(1),
		Short: "sends a message to start a new signing ceremony",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			proposingFileData, err := ioutil.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			var req httprequests.StartCeremonyForm
			if err = json.Unmarshal(proposingFileData, &req); err != nil {
				return fmt.Errorf("failed to unmarshal ceremony proposing file: %w", err)
			}

			if len(req.Participants) == 0 || req.Threshold > len(req.Participants) {
				return fmt.Errorf("invalid threshold: %d", req.Threshold)
			}

			messageDataBz, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("failed to marshal StartCeremonyForm: %v", err)
			}
			resp, err := rawPostRequest(fmt.Sprintf("http://%s/startCeremony", listenAddr),
				"application/json", messageDataBz)
			if err != nil {
				return fmt.Errorf("failed to make HTTP request to start ceremony: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to make HTTP request to start ceremony: %v", resp.ErrorMessage)
			}
			return nil
		},
	}
}

func getHashOfStartCeremonyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_start_ceremony_file_hash [proposing_file]",
		Args:  cobra.ExactArgs(1),
		Short: "returns hash of the ceremony proposing message to verify correctness",
		RunE: func(cmd *cobra.Command, args []string) error {
			proposingFileData, err := ioutil.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			var req httprequests.StartCeremonyForm
			if err = json.Unmarshal(proposingFileData, &req); err != nil {
				return fmt.Errorf("failed to unmarshal ceremony proposing file: %w", err)
			}

			hash, err := calcStartCeremonyFileHash(&req)
			if err != nil {
				return fmt.Errorf("failed to calc hash of the proposing message: %w", err)
			}
			fmt.Println(hex.EncodeToString(hash))
			return nil
		},
	}
}

func postCommitmentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post_commitment [ceremony_id] [hiding_commitment] [binding_commitment]",
		Args:  cobra.ExactArgs(3),
		Short: "sends a hex-encoded nonce commitment pair for the ceremony",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			req := httprequests.PostCommitmentForm{
				CeremonyID:        args[0],
				HidingCommitment:  args[1],
				BindingCommitment: args[2],
			}
			messageDataBz, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("failed to marshal PostCommitmentForm: %v", err)
			}
			resp, err := rawPostRequest(fmt.Sprintf("http://%s/postCommitment", listenAddr),
				"application/json", messageDataBz)
			if err != nil {
				return fmt.Errorf("failed to make HTTP request to post commitment: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to make HTTP request to post commitment: %v", resp.ErrorMessage)
			}
			return nil
		},
	}
}

func buildSigningPackageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build_signing_package [ceremony_id]",
		Args:  cobra.ExactArgs(1),
		Short: "assembles the canonical signing package from the collected commitments",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			req := httprequests.BuildSigningPackageForm{CeremonyID: args[0]}
			messageDataBz, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("failed to marshal BuildSigningPackageForm: %v", err)
			}
			resp, err := rawPostRequest(fmt.Sprintf("http://%s/buildSigningPackage", listenAddr),
				"application/json", messageDataBz)
			if err != nil {
				return fmt.Errorf("failed to make HTTP request to build signing package: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to make HTTP request to build signing package: %v", resp.ErrorMessage)
			}
			fmt.Println(resp.Result.(string))
			return nil
		},
	}
}

func postPartialSignatureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post_partial_signature [ceremony_id] [partial_signature_file]",
		Args:  cobra.ExactArgs(2),
		Short: "sends a partial signature produced by the participant machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			partialSignature, err := ioutil.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read partial signature file: %w", err)
			}

			req := httprequests.PostPartialSignatureForm{
				CeremonyID:       args[0],
				PartialSignature: partialSignature,
			}
			messageDataBz, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("failed to marshal PostPartialSignatureForm: %v", err)
			}
			resp, err := rawPostRequest(fmt.Sprintf("http://%s/postPartialSignature", listenAddr),
				"application/json", messageDataBz)
			if err != nil {
				return fmt.Errorf("failed to make HTTP request to post partial signature: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to make HTTP request to post partial signature: %v", resp.ErrorMessage)
			}
			return nil
		},
	}
}

func getUsernameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_username",
		Short: "returns node's username",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			resp, err := rawGetRequest(fmt.Sprintf("http://%s/getUsername", listenAddr))
			if err != nil {
				return fmt.Errorf("failed to get node's username: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to get node's username: %v", resp.ErrorMessage)
			}
			fmt.Println(resp.Result.(string))
			return nil
		},
	}
}

func getPubKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_pubkey",
		Short: "returns node's pubkey",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			resp, err := rawGetRequest(fmt.Sprintf("http://%s/getPubKey", listenAddr))
			if err != nil {
				return fmt.Errorf("failed to get node's pubkey: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to get node's pubkey: %v", resp.ErrorMessage)
			}
			fmt.Println(resp.Result.(string))
			return nil
		},
	}
}

func getSignaturesRequest(host string, ceremonyID string) (*SignaturesResponse, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/getSignatures?ceremonyID=%s", host, ceremonyID))
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var response SignaturesResponse
	if err = json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	return &response, nil
}

func getSignaturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_signatures [ceremony_id]",
		Args:  cobra.ExactArgs(1),
		Short: "returns the reconstructed signatures broadcasted by participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}
			signatures, err := getSignaturesRequest(listenAddr, args[0])
			if err != nil {
				return fmt.Errorf("failed to get signatures: %w", err)
			}
			if signatures.ErrorMessage != "" {
				return fmt.Errorf("failed to get signatures: %s", signatures.ErrorMessage)
			}
			for _, participantSig := range signatures.Result {
				fmt.Printf("\tParticipant: %s\n", participantSig.Username)
				fmt.Printf("\tReconstructed signature for the data: %s\n", base64.StdEncoding.EncodeToString(participantSig.Signature))
				fmt.Println()
			}
			return nil
		},
	}
}

func getSignatureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_signature [ceremony_id]",
		Args:  cobra.ExactArgs(1),
		Short: "returns the aggregated group signature for the ceremony",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			resp, err := rawGetRequest(fmt.Sprintf("http://%s/getSignature?ceremonyID=%s", listenAddr, args[0]))
			if err != nil {
				return fmt.Errorf("failed to get signature: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to get signature: %v", resp.ErrorMessage)
			}
			fmt.Println(resp.Result.(string))
			return nil
		},
	}
}

func saveOffsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save_offset [offset]",
		Short: "saves a new offset for a storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			offset, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse uint: %w", err)
			}
			req := httprequests.StateOffsetForm{Offset: offset}
			data, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			resp, err := rawPostRequest(fmt.Sprintf("http://%s/saveOffset", listenAddr), "application/json", data)
			if err != nil {
				return fmt.Errorf("failed to save offset: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to save offset: %v", resp.ErrorMessage)
			}
			fmt.Println(resp.Result.(string))
			return nil
		},
	}
}

func getOffsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_offset",
		Short: "returns a current offset for the storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			resp, err := rawGetRequest(fmt.Sprintf("http://%s/getOffset", listenAddr))
			if err != nil {
				return fmt.Errorf("failed to get offset: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to get offset: %v", resp.ErrorMessage)
			}
			fmt.Println(uint64(resp.Result.(float64)))
			return nil
		},
	}
}

func getFSMDumpRequest(host string, ceremonyID string) (*FSMDumpResponse, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/getFSMDump?ceremonyID=%s", host, ceremonyID))
	if err != nil {
		return nil, fmt.Errorf("failed to get FSM dump: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var response FSMDumpResponse
	if err = json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	return &response, nil
}

func showCeremonyStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show_ceremony_status [ceremony_id]",
		Args:  cobra.ExactArgs(1),
		Short: "shows the current status of the signing ceremony",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			fsmDumpResponse, err := getFSMDumpRequest(listenAddr, args[0])
			if err != nil {
				return fmt.Errorf("failed to get FSM dump: %w", err)
			}
			if fsmDumpResponse.ErrorMessage != "" {
				return fmt.Errorf("failed to get FSM dump: %v", fsmDumpResponse.ErrorMessage)
			}
			dump := fsmDumpResponse.Result

			fmt.Printf("Ceremony current status is %s\n", dump.State)

			waiting := make([]string, 0)
			confirmed := make([]string, 0)
			failed := make([]string, 0)

			if dump.Payload.CeremonyPayload != nil {
				for _, p := range dump.Payload.CeremonyPayload.Quorum {
					status := p.Status.String()
					if strings.Contains(status, "Await") {
						waiting = append(waiting, p.Username)
					}
					if strings.Contains(status, "Error") || strings.Contains(status, "Declined") {
						failed = append(failed, p.Username)
					}
					if strings.Contains(status, "Confirmed") {
						confirmed = append(confirmed, p.Username)
					}
				}
			}

			if len(waiting) > 0 {
				fmt.Printf("Waiting for a data from: %s\n", color.YellowString(strings.Join(waiting, ", ")))
			}
			if len(confirmed) > 0 {
				fmt.Printf("Received a data from: %s\n", color.GreenString(strings.Join(confirmed, ", ")))
			}
			if len(failed) > 0 {
				fmt.Printf("Participants who got some error during a process: %s\n", color.RedString(strings.Join(failed, ", ")))
			}

			return nil
		},
	}
}

func getFSMListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_fsm_list",
		Short: "returns a list of all ceremony FSMs served by the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr, err := cmd.Flags().GetString(flagListenAddr)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			resp, err := rawGetRequest(fmt.Sprintf("http://%s/getFSMList", listenAddr))
			if err != nil {
				return fmt.Errorf("failed to make HTTP request to get FSM list: %w", err)
			}
			if resp.ErrorMessage != "" {
				return fmt.Errorf("failed to make HTTP request to get FSM list: %v", resp.ErrorMessage)
			}
			fsms := resp.Result.(map[string]interface{})
			for ceremonyID, state := range fsms {
				fmt.Printf("Ceremony ID: %s - FSM state: %s\n", ceremonyID, state.(string))
			}
			return nil
		},
	}
}
