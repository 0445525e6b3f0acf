// Probe is a small operator client for the relay: it dials the WebSocket
// endpoint, prints the current room table, and can create or join a room
// and tail the events relayed to it. Useful for eyeballing a live server
// without a game client.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"game-relay/domain"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	create := flag.String("create", "", "create a room (joining it), then tail its events")
	join := flag.String("join", "", "join an existing room, then tail its events")
	watch := flag.Bool("watch", false, "stay connected and print everything the relay sends")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(cfg.RelayAddr, nil)
	if err != nil {
		log.Fatalf("Failed to dial %s: %v", cfg.RelayAddr, err)
	}
	defer conn.Close()

	// The relay greets every connection with the current room table.
	_ = conn.SetReadDeadline(time.Now().Add(cfg.Timeout))
	var hello envelope
	if err := conn.ReadJSON(&hello); err != nil {
		log.Fatalf("No greeting from relay: %v", err)
	}
	var table domain.Table
	if err := json.Unmarshal(hello.Data, &table); err != nil {
		log.Fatalf("Unreadable room table: %v", err)
	}
	printTable(table, cfg.Colours)

	switch {
	case *create != "":
		_ = conn.WriteJSON(outbound{Event: domain.EventCreateRoom, Data: map[string]string{"name": *create}})
	case *join != "":
		_ = conn.WriteJSON(outbound{Event: domain.EventJoinRoom, Data: *join})
	default:
		if !*watch {
			return
		}
	}

	tail(conn, cfg.Colours)
}

// tail prints every event the relay sends until the connection drops.
func tail(conn *websocket.Conn, colours bool) {
	_ = conn.SetReadDeadline(time.Time{})
	for {
		var evt envelope
		if err := conn.ReadJSON(&evt); err != nil {
			log.Fatalf("Connection lost: %v", err)
		}
		if colours {
			color.Green.Printf("%-14s", evt.Event)
		} else {
			fmt.Printf("%-14s", evt.Event)
		}
		fmt.Printf(" %s\n", evt.Data)
	}
}

func printTable(table domain.Table, colours bool) {
	if colours {
		color.Bold.Printf("Rooms: %d\n", len(table))
	} else {
		fmt.Printf("Rooms: %d\n", len(table))
	}

	names := lo.Keys(table)
	sort.Strings(names)

	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader([]string{"Room", "Type", "Players", "Blocks"})
	for _, name := range names {
		room := table[name]
		w.Append([]string{
			name,
			room.Kind,
			strconv.Itoa(len(room.Players)),
			strconv.Itoa(len(room.Blocks)),
		})
	}
	w.Render()
}
