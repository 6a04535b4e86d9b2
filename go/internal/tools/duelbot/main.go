package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type serverFrame struct {
	Type string `json:"type"`
}

func main() {
	url := flag.String("url", "ws://localhost:4000/duel", "duel WebSocket endpoint")
	wallet := flag.String("wallet", "", "wallet id to play as")
	username := flag.String("username", "duelbot", "display name")
	strategy := flag.String("strategy", "random", "answer strategy: yes, no, random or silent")
	think := flag.Duration("think", 500*time.Millisecond, "delay before answering")
	flag.Parse()

	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *wallet == "" {
		*wallet = "bot-" + time.Now().Format("150405.000")
	}
	pick, err := answerStrategy(*strategy)
	if err != nil {
		log.Fatal().Err(err).Msg("bad strategy")
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", *url).Msg("failed to connect")
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	if err := conn.WriteJSON(map[string]string{"type": "init", "wallet": *wallet, "username": *username}); err != nil {
		log.Fatal().Err(err).Msg("failed to send init")
	}
	log.Info().Str("wallet", *wallet).Str("strategy", *strategy).Msg("queued for a duel")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Warn().Err(err).Msg("unreadable server frame")
			continue
		}
		log.Info().Str("type", frame.Type).RawJSON("message", data).Msg("server")

		switch frame.Type {
		case "round_start":
			choice := pick()
			if choice == "" {
				continue
			}
			time.Sleep(*think)
			if err := conn.WriteJSON(map[string]string{"type": "answer", "choice": choice}); err != nil {
				log.Error().Err(err).Msg("failed to answer")
				return
			}
		case "duel_finished", "opponent_left":
			return
		}
	}
}

// answerStrategy returns a chooser; an empty choice means stay silent
func answerStrategy(name string) (func() string, error) {
	switch name {
	case "yes", "no":
		return func() string { return name }, nil
	case "silent":
		return func() string { return "" }, nil
	case "random":
		return func() string {
			if rand.IntN(2) == 0 {
				return "yes"
			}
			return "no"
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
