// Command server runs the sshchat server. Grounded on the teacher's
// cmd/main.go: godotenv loads .env, env vars wire up the host key,
// whitelist and listener address, then the server blocks accepting
// connections.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sshchat/auth"
	"sshchat/room"
	"sshchat/sshserver"
)

func main() {
	godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	sshAuth, err := auth.Load(
		os.Getenv("HOST_SSH_PRIVATE_KEY_PATH"),
		os.Getenv("AUTHORIZED_KEYS_PATH"),
		os.Getenv("OPERATORS_PATH"),
	)
	if err != nil {
		log.Fatal("failed to load auth configuration", zap.Error(err))
	}

	r := room.New(log)
	if motdPath := os.Getenv("MOTD_PATH"); motdPath != "" {
		motd, err := os.ReadFile(motdPath)
		if err != nil {
			log.Fatal("failed to load motd", zap.Error(err))
		}
		r.SetMotd(string(motd))
	}

	host := os.Getenv("SSH_SERVER_HOST")
	port := os.Getenv("SSH_SERVER_PORT")
	if port == "" {
		port = "2222"
	}

	server, err := sshserver.New(log, sshAuth, r, host, port)
	if err != nil {
		log.Fatal("failed to start ssh server", zap.Error(err))
	}

	log.Info("sshchat server listening", zap.String("host", host), zap.String("port", port))
	server.AcceptConnections()
}
