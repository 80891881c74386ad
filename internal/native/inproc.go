// SPDX-License-Identifier: GPL-3.0-or-later

package native

import "slices"

func (s *Sock) bindInproc(name string) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return ENOTSOCK
	}
	if c.terminating {
		return ETERM
	}
	if name == "" {
		return EINVAL
	}
	if _, found := c.inproc[name]; found {
		return EADDRINUSE
	}
	c.inproc[name] = s
	s.inprocBound = append(s.inprocBound, name)
	s.lastEndpoint = "inproc://" + name

	// Complete the connections that were requested before the bind.
	for _, peer := range c.pending[name] {
		peer.inprocPending = slices.DeleteFunc(peer.inprocPending, func(x string) bool { return x == name })
		if Compatible(peer.typ, s.typ) {
			newInprocPairLocked(peer, s, name)
		}
	}
	delete(c.pending, name)
	return 0
}

func (s *Sock) connectInproc(name string) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return ENOTSOCK
	}
	if c.terminating {
		return ETERM
	}
	if name == "" {
		return EINVAL
	}
	bound, found := c.inproc[name]
	if !found {
		c.pending[name] = append(c.pending[name], s)
		s.inprocPending = append(s.inprocPending, name)
		return 0
	}
	if !Compatible(s.typ, bound.typ) {
		return ENOCOMPATPROTO
	}
	newInprocPairLocked(s, bound, name)
	return 0
}

// newInprocPairLocked connects client and server with a pair of pipes.
func newInprocPairLocked(client, server *Sock, name string) {
	endpoint := "inproc://" + name
	cp := &pipe{endpoint: endpoint, peerID: server.routingIDLocked(), peerType: server.typ, sock: client}
	sp := &pipe{endpoint: endpoint, peerID: client.routingIDLocked(), peerType: client.typ, sock: server}
	cp.peer, sp.peer = sp, cp
	if !client.attachLocked(cp) {
		return
	}
	if !server.attachLocked(sp) {
		client.pipes = slices.DeleteFunc(client.pipes, func(p *pipe) bool { return p == cp })
	}
}
