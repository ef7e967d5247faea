package websocket

import "sync"

// RoomID names a fan-out group. Home rooms and class rooms use distinct
// prefixes so a user id can never collide with a class id.
type RoomID string

// UserRoom is the private room of one user, joined by all of their connections
func UserRoom(userID string) RoomID {
	return RoomID("user:" + userID)
}

// ClassRoom is the shared room of one class
func ClassRoom(classID string) RoomID {
	return RoomID("class:" + classID)
}

// Rooms is the in-memory room membership table. A room exists only while
// at least one client is joined to it.
type Rooms struct {
	mu      sync.RWMutex
	members map[RoomID]map[*Client]struct{}
	joined  map[*Client]map[RoomID]struct{}
}

// NewRooms creates an empty membership table
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[RoomID]map[*Client]struct{}),
		joined:  make(map[*Client]map[RoomID]struct{}),
	}
}

// Join adds client to room. Joining twice is a no-op; the result reports
// whether the client was newly added.
func (r *Rooms) Join(client *Client, room RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.members[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.members[room] = members
	}
	if _, exists := members[client]; exists {
		return false
	}
	members[client] = struct{}{}

	rooms, ok := r.joined[client]
	if !ok {
		rooms = make(map[RoomID]struct{})
		r.joined[client] = rooms
	}
	rooms[room] = struct{}{}
	return true
}

// LeaveAll removes client from every room it joined and drops rooms left empty
func (r *Rooms) LeaveAll(client *Client) []RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := r.joined[client]
	left := make([]RoomID, 0, len(rooms))
	for room := range rooms {
		if members, ok := r.members[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(r.members, room)
			}
		}
		left = append(left, room)
	}
	delete(r.joined, client)
	return left
}

// Members returns a snapshot of the union of the given rooms' members.
// A client in several of the rooms appears once.
func (r *Rooms) Members(rooms ...RoomID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Client]struct{})
	var clients []*Client
	for _, room := range rooms {
		for client := range r.members[room] {
			if _, dup := seen[client]; dup {
				continue
			}
			seen[client] = struct{}{}
			clients = append(clients, client)
		}
	}
	return clients
}

// RoomsOf returns the rooms client currently belongs to
func (r *Rooms) RoomsOf(client *Client) []RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]RoomID, 0, len(r.joined[client]))
	for room := range r.joined[client] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Count returns the number of non-empty rooms
func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
