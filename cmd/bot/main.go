package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"actorstage.dev/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "actor name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ActorName:       *name,
		Capabilities: protocol.HelloCapabilities{
			MaxQueue: 8,
		},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME actor_id=%s tick_rate=%d seed=%d", w.ActorID, w.StageParams.TickRateHz, w.StageParams.Seed)

		case protocol.TypeState:
			var state protocol.StateMsg
			if err := json.Unmarshal(msg, &state); err != nil {
				continue
			}
			handleState(conn, logger, rng, &state)
		}
	}
}

func handleState(conn *websocket.Conn, logger *log.Logger, rng *rand.Rand, state *protocol.StateMsg) {
	// Pick a new wander heading every ~10 seconds and run toward it.
	if state.Tick%200 == 10 {
		yaw := rng.Float64() * 2 * math.Pi
		look := [2]float64{yaw, 0}
		forward := [3]float64{0, 0, 1}
		sprint := rng.Intn(3) == 0
		cmd := protocol.CmdMsg{
			Type:            protocol.TypeCmd,
			ProtocolVersion: protocol.Version,
			Tick:            state.Tick,
			ActorID:         state.ActorID,
			Intents: []protocol.IntentReq{
				{ID: fmt.Sprintf("i_look_%d", state.Tick), Type: "LOOK", LookAxes: &look},
				{ID: fmt.Sprintf("i_move_%d", state.Tick), Type: "MOVE", Throttle: &forward},
				{ID: fmt.Sprintf("i_sprint_%d", state.Tick), Type: "SPRINT", Sprint: &sprint},
			},
		}
		_ = conn.WriteJSON(cmd)
	}

	// Hop now and then while grounded.
	if state.Self.Grounded && state.Tick%97 == 0 {
		cmd := protocol.CmdMsg{
			Type:            protocol.TypeCmd,
			ProtocolVersion: protocol.Version,
			Tick:            state.Tick,
			ActorID:         state.ActorID,
			Intents: []protocol.IntentReq{
				{ID: fmt.Sprintf("i_jump_%d", state.Tick), Type: "JUMP"},
			},
		}
		_ = conn.WriteJSON(cmd)
	}

	for _, ev := range state.Events {
		if ev["ok"] == false {
			logger.Printf("rejected: ref=%v code=%v msg=%v", ev["ref"], ev["code"], ev["message"])
		}
	}
}
