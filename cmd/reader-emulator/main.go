// reader-emulator simulates a bank of tag readers over TCP so the kiosk
// can be exercised on a machine without NFC hardware. Each simulated
// reader listens on its own port; tags are "presented" from stdin:
//
//	<reader> <hex-uid> [text]   emit a tag on reader N (0-based)
//	<reader> bad                emit a tag with an unreadable UID
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

type readerPort struct {
	mu    sync.Mutex
	conns []net.Conn
}

func (p *readerPort) add(c net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns = append(p.conns, c)
}

func (p *readerPort) send(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	alive := p.conns[:0]
	for _, c := range p.conns {
		if _, err := fmt.Fprintf(c, "%s\n", line); err != nil {
			c.Close()
			continue
		}
		alive = append(alive, c)
	}
	p.conns = alive
}

func main() {
	var (
		basePort = flag.Int("base-port", 9000, "First reader port; reader N listens on base-port+N")
		count    = flag.Int("readers", 3, "Number of simulated readers")
		verbose  = flag.Bool("v", true, "Verbose logs")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ports := make([]*readerPort, *count)
	for i := 0; i < *count; i++ {
		i := i
		ports[i] = &readerPort{}
		addr := fmt.Sprintf(":%d", *basePort+i)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			log.Fatalf("reader %d: listen %s: %v", i, addr, err)
		}
		log.Printf("reader %d listening on %s", i, addr)

		go func() {
			<-ctx.Done()
			ln.Close()
		}()
		go func() {
			for {
				c, err := ln.Accept()
				if err != nil {
					return
				}
				if *verbose {
					log.Printf("reader %d: kiosk connected from %s", i, c.RemoteAddr())
				}
				ports[i].add(c)
			}
		}()
	}

	log.Printf("type: <reader> <hex-uid> [text] | <reader> bad")

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			parts := strings.Fields(sc.Text())
			if len(parts) < 2 {
				continue
			}
			n, err := strconv.Atoi(parts[0])
			if err != nil || n < 0 || n >= *count {
				log.Printf("no such reader %q", parts[0])
				continue
			}
			switch {
			case parts[1] == "bad":
				// hex decode of "zz" fails on the kiosk side: unreadable UID
				ports[n].send("TAG,zz")
			case len(parts) >= 3:
				ports[n].send("TAG," + parts[1] + "," + strings.Join(parts[2:], " "))
			default:
				ports[n].send("TAG," + parts[1])
			}
			if *verbose {
				log.Printf("reader %d: tag sent", n)
			}
		}
		stop()
	}()

	<-ctx.Done()
	log.Printf("emulator stopped")
}
