// Package podman models the container engine connections podscan can
// scan against and the environment handed to the anchore tools for
// remote engines.
package podman

import (
	"net/url"

	"github.com/BurntSushi/toml"

	"github.com/container-tools/podscan/util/common/errors"
	"github.com/container-tools/podscan/util/common/fileutil"
)

// Connection identifies one engine service destination.
type Connection struct {
	// Name is the podman system connection name; "" means the local
	// default socket.
	Name     string
	URI      string
	Identity string
	Default  bool
}

// Local is the implicit connection to the default local socket.
var Local = Connection{Name: "default"}

type serviceDestination struct {
	URI      string `toml:"uri"`
	Identity string `toml:"identity"`
}

type containersConf struct {
	Engine struct {
		ActiveService       string                        `toml:"active_service"`
		ServiceDestinations map[string]serviceDestination `toml:"service_destinations"`
	} `toml:"engine"`
}

// LoadConnections reads podman system connections from a containers.conf
// file. A missing file yields just the local connection; a file that
// exists but cannot be parsed is an error.
func LoadConnections(path string) ([]Connection, error) {
	if !fileutil.Exists(path) {
		return []Connection{Local}, nil
	}
	var conf containersConf
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return nil, errors.Wrap(err, "parse containers.conf")
	}

	conns := []Connection{Local}
	for name, dest := range conf.Engine.ServiceDestinations {
		conns = append(conns, Connection{
			Name:     name,
			URI:      dest.URI,
			Identity: dest.Identity,
			Default:  name == conf.Engine.ActiveService,
		})
	}
	return conns, nil
}

// Find returns the named connection, or the local one for "".
func Find(conns []Connection, name string) (Connection, error) {
	if name == "" || name == Local.Name {
		return Local, nil
	}
	for _, c := range conns {
		if c.Name == name {
			return c, nil
		}
	}
	return Connection{}, errors.NewNotFoundError("connection", name)
}

// Env resolves the environment for invoking a tool against conn.
// Local connections need nothing. SSH remotes get CONTAINER_HOST and,
// when an identity file is configured, CONTAINER_SSHKEY. Any other
// remote scheme is unsupported.
func Env(conn Connection) ([]string, error) {
	if conn.URI == "" {
		return nil, nil
	}

	u, err := url.Parse(conn.URI)
	if err != nil {
		return nil, errors.NewUnsupportedConnectionError(conn.Name, conn.URI)
	}

	switch u.Scheme {
	case "unix":
		// Local socket, no environment needed.
		return nil, nil
	case "ssh":
		env := []string{"CONTAINER_HOST=" + conn.URI}
		if conn.Identity != "" {
			env = append(env, "CONTAINER_SSHKEY="+conn.Identity)
		}
		return env, nil
	default:
		return nil, errors.NewUnsupportedConnectionError(conn.Name, conn.URI)
	}
}
