package delivery

import (
	"context"
	"fmt"
	"net"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"github.com/scgolang/osc"
)

// AddressPrefix is prepended to the event name to form the OSC address.
const AddressPrefix = "/beatcoach/"

// OSCPublisher sends each report as one OSC message to a UDP endpoint. The
// message carries the JSON encoded report as its single string argument.
type OSCPublisher struct {
	conn *osc.UDPConn
}

// NewOSCPublisher dials addr, for example "127.0.0.1:57120".
func NewOSCPublisher(addr string) (*OSCPublisher, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve OSC target %s: %w", addr, err)
	}
	conn, err := osc.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial OSC target %s: %w", addr, err)
	}
	return &OSCPublisher{conn: conn}, nil
}

// Message builds the OSC message for r.
func Message(r contracts.Report) (osc.Message, error) {
	body, err := Encode(r)
	if err != nil {
		return osc.Message{}, fmt.Errorf("encode %s: %w", r.Event(), err)
	}
	return osc.Message{
		Address:   AddressPrefix + r.Event(),
		Arguments: osc.Arguments{osc.String(body)},
	}, nil
}

func (p *OSCPublisher) Publish(ctx context.Context, r contracts.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Message(r)
	if err != nil {
		return err
	}
	return p.conn.Send(msg)
}

func (p *OSCPublisher) Close() error {
	return p.conn.Close()
}
