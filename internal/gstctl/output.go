package gstctl

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kbukum/gstclient/gstd"
)

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// render prints data as JSON, or calls table when the table format is
// selected.
func (a *app) render(data interface{}, table func(*tabwriter.Writer)) error {
	if a.outputFormat == "json" {
		return printJSON(a.out, data)
	}
	tw := newTable(a.out)
	table(tw)
	return tw.Flush()
}

// done reports a command that returns no payload.
func (a *app) done(action, target string) error {
	return a.render(map[string]string{"status": "ok", "action": action, "target": target}, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "%s\t%s\tok\n", action, target)
	})
}

func (a *app) renderNodes(header string, nodes []gstd.Node) error {
	return a.render(nodes, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, header)
		for _, n := range nodes {
			fmt.Fprintln(tw, n.Name)
		}
	})
}

func (a *app) renderProperty(p *gstd.Property) error {
	return a.render(p, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "NAME\tVALUE\tTYPE\tACCESS\n")
		writePropertyRow(tw, *p)
	})
}

// renderEnvelope prints whatever payload variant the envelope carries.
func (a *app) renderEnvelope(env *gstd.Envelope) error {
	return a.render(env, func(tw *tabwriter.Writer) {
		switch env.Response.Kind {
		case gstd.PayloadProperties:
			props := env.Response.Properties
			if len(props.Properties) > 0 {
				fmt.Fprintf(tw, "NAME\tVALUE\tTYPE\tACCESS\n")
				for _, p := range props.Properties {
					writePropertyRow(tw, p)
				}
			}
			if len(props.Nodes) > 0 {
				fmt.Fprintln(tw, "NODE")
				for _, n := range props.Nodes {
					fmt.Fprintln(tw, n.Name)
				}
			}
		case gstd.PayloadProperty:
			fmt.Fprintf(tw, "NAME\tVALUE\tTYPE\tACCESS\n")
			writePropertyRow(tw, *env.Response.Property)
		default:
			writeBusMessage(tw, env.Response.Bus)
		}
	})
}

func writePropertyRow(tw io.Writer, p gstd.Property) {
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Value, p.Param.Type, p.Param.Access)
}

func writeBusMessage(tw io.Writer, msg *gstd.BusMessage) {
	if msg == nil {
		fmt.Fprintln(tw, "no message")
		return
	}
	fmt.Fprintf(tw, "TYPE\tSOURCE\tTIMESTAMP\tSEQNUM\tMESSAGE\n")
	fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", msg.Type, msg.Source, msg.Timestamp, msg.Seqnum, msg.Message)
}
