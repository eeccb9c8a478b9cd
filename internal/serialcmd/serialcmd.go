// Package serialcmd reads newline-delimited command words from a serial
// console and forwards them to the daemon's command channel. It is one of
// the two external command sources (the other is the MQTT command topic);
// word parsing happens at the dispatcher, not here.
package serialcmd

import (
	"bufio"
	"io"
	"log"
	"strings"

	"github.com/tarm/serial"
)

// Open opens the serial port at the given baud rate.
func Open(port string, baud int) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{Name: port, Baud: baud})
}

// Run scans r line by line and sends each trimmed word to out. Blank lines
// and '#' comments are skipped; if the channel is full the word is dropped
// with a log line rather than blocking the reader. Run returns when r
// reaches EOF or fails.
func Run(r io.Reader, out chan<- string) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		word := strings.TrimSpace(sc.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		select {
		case out <- word:
		default:
			log.Printf("serialcmd: command channel full, dropping %q", word)
		}
	}
	return sc.Err()
}
