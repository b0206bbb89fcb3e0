package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frostline/fc4tx/node/api/http_api"
	"github.com/frostline/fc4tx/node/config"
	"github.com/frostline/fc4tx/node/modules/keystore"
	"github.com/frostline/fc4tx/node/services"
	"github.com/frostline/fc4tx/node/services/node"
	"github.com/frostline/fc4tx/storage/kafka_storage"
)

const (
	flagConfig                   = "config"
	flagUserName                 = "username"
	flagListenAddr               = "listen_addr"
	flagStateDBDSN               = "state_dbdsn"
	flagStorageDBDSN             = "storage_dbdsn"
	flagStorageTopic             = "storage_topic"
	flagKafkaConsumerGroup       = "kafka_consumer_group"
	flagKafkaProducerCredentials = "producer_credentials"
	flagKafkaConsumerCredentials = "consumer_credentials"
	flagKafkaTrustStorePath      = "kafka_truststore_path"
	flagStoreDBDSN               = "key_store_dbdsn"
	flagStorageTimeout           = "storage_timeout"
	flagSkipCommKeysVerification = "skip_comm_keys_verification"
)

func init() {
	rootCmd.PersistentFlags().String(flagConfig, "", "Path to a config file")
	rootCmd.PersistentFlags().String(flagUserName, "testUser", "Username")
	rootCmd.PersistentFlags().String(flagListenAddr, "localhost:8080", "Listen Address")
	rootCmd.PersistentFlags().String(flagStateDBDSN, "./fc4tx_node_state", "State DBDSN")
	rootCmd.PersistentFlags().String(flagStorageDBDSN, "localhost:9093", "Storage DBDSN")
	rootCmd.PersistentFlags().String(flagStorageTopic, "messages", "Storage Topic (Kafka)")
	rootCmd.PersistentFlags().String(flagKafkaConsumerGroup, "", "Kafka consumer group")
	rootCmd.PersistentFlags().String(flagKafkaProducerCredentials, "producer:producerpass", "Producer credentials for Kafka: username:password")
	rootCmd.PersistentFlags().String(flagKafkaConsumerCredentials, "consumer:consumerpass", "Consumer credentials for Kafka: username:password")
	rootCmd.PersistentFlags().String(flagKafkaTrustStorePath, "certs/ca.pem", "Path to kafka truststore")
	rootCmd.PersistentFlags().String(flagStoreDBDSN, "./fc4tx_key_store", "Key Store DBDSN")
	rootCmd.PersistentFlags().Duration(flagStorageTimeout, 10*time.Second, "Storage I/O timeout")
	rootCmd.PersistentFlags().Bool(flagSkipCommKeysVerification, false, "Skip communication key verification on incoming messages")
}

// loadConfig layers an optional config file and FC4TX_* environment
// variables over the command line flags.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix("FC4TX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath := v.GetString(flagConfig); configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	return v, nil
}

func parseKafkaSaslPlain(creds string) (*plain.Mechanism, error) {
	credsSplit := strings.SplitN(creds, ":", 2)
	if len(credsSplit) == 1 {
		return nil, fmt.Errorf("failed to parse credentials")
	}
	return &plain.Mechanism{
		Username: credsSplit[0],
		Password: credsSplit[1],
	}, nil
}

func genKeyPairCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen_keys",
		Short: "generates a keypair to sign and verify messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}

			userName := v.GetString(flagUserName)
			keyStoreDBDSN := v.GetString(flagStoreDBDSN)

			keyPair := keystore.NewKeyPair()
			keyStore, err := keystore.NewLevelDBKeyStore(userName, keyStoreDBDSN)
			if err != nil {
				return fmt.Errorf("failed to init key store: %w", err)
			}
			if err = keyStore.PutKeys(userName, keyPair); err != nil {
				return fmt.Errorf("failed to save keypair: %w", err)
			}
			fmt.Printf("keypair generated for user %s and saved to %s\n", userName, keyStoreDBDSN)
			return nil
		},
	}
}

func buildNodeConfig(v *viper.Viper) (*config.Config, error) {
	tlsConfig, err := kafka_storage.GetTLSConfig(v.GetString(flagKafkaTrustStorePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create tls config: %w", err)
	}

	producerCreds, err := parseKafkaSaslPlain(v.GetString(flagKafkaProducerCredentials))
	if err != nil {
		return nil, fmt.Errorf("failed to parse producer credentials: %w", err)
	}

	consumerCreds, err := parseKafkaSaslPlain(v.GetString(flagKafkaConsumerCredentials))
	if err != nil {
		return nil, fmt.Errorf("failed to parse consumer credentials: %w", err)
	}

	return &config.Config{
		Username:      v.GetString(flagUserName),
		StateDBDSN:    v.GetString(flagStateDBDSN),
		KeyStoreDBDSN: v.GetString(flagStoreDBDSN),
		HttpApiConfig: &config.HttpApiConfig{
			ListenAddr: v.GetString(flagListenAddr),
		},
		KafkaStorageConfig: &config.KafkaStorageConfig{
			DBDSN:               v.GetString(flagStorageDBDSN),
			Topic:               v.GetString(flagStorageTopic),
			ConsumerGroup:       v.GetString(flagKafkaConsumerGroup),
			TlsConfig:           tlsConfig,
			ProducerCredentials: producerCreds,
			ConsumerCredentials: consumerCreds,
			Timeout:             v.GetDuration(flagStorageTimeout),
		},
	}, nil
}

func startNodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "starts fc4tx node",
		Run: func(cmd *cobra.Command, args []string) {
			v, err := loadConfig(cmd)
			if err != nil {
				log.Fatalf("failed to read configuration: %v", err)
			}

			cfg, err := buildNodeConfig(v)
			if err != nil {
				log.Fatalf("failed to build node config: %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())

			sp, err := services.InitServices(cfg)
			if err != nil {
				log.Fatalf("failed to init services: %v", err)
			}

			nodeInstance, err := node.NewNode(ctx, cfg, sp)
			if err != nil {
				log.Fatalf("failed to init node: %v", err)
			}
			nodeInstance.SetSkipCommKeysVerification(v.GetBool(flagSkipCommKeysVerification))

			server := http_api.RESTApiProvider{}
			if err := server.NewServer(cfg, nodeInstance, sp); err != nil {
				log.Fatalf("failed to init http server: %v", err)
			}

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigs

				log.Println("Received signal, stopping node...")
				cancel()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := server.Stop(shutdownCtx); err != nil {
					log.Printf("failed to stop http server: %v", err)
				}

				log.Println("Node stopped, exiting")
				os.Exit(0)
			}()

			go func() {
				if err := server.Start(); err != nil {
					log.Printf("HTTP server stopped: %v", err)
				}
			}()

			nodeInstance.GetLogger().Log("starting to poll messages from append-only log...")
			if err = nodeInstance.Poll(); err != nil {
				log.Fatalf("error while handling messages: %v", err)
			}
			nodeInstance.GetLogger().Log("polling is stopped")
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "fc4tx_d",
	Short: "fc4tx node daemon implementation",
}

func main() {
	rootCmd.AddCommand(
		startNodeCommand(),
		genKeyPairCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
