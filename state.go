package bonerig

import "math"

// TrackEntry is the playback state of one AnimationState track.
type TrackEntry struct {
	TrackIndex int
	Animation  *AnimationClip
	Time       float64
	LastTime   float64 // Time after the previous step; the next event window opens here
	Looping    bool
	Complete   bool
	Alpha      float64
	Delay      float64
	Next       *TrackEntry
}

// Listener receives playback callbacks. Nil fields are skipped.
type Listener struct {
	Start    func(entry *TrackEntry)
	Complete func(entry *TrackEntry)
	Loop     func(entry *TrackEntry)
	Event    func(entry *TrackEntry, ev AnimationEvent)
}

// AnimationState plays clips on independent tracks of one skeleton. Tracks
// are applied in index order, so later tracks blend over earlier ones.
type AnimationState struct {
	TimeScale float64

	skeleton  *Skeleton
	tracks    []*TrackEntry
	listeners []Listener
}

// NewAnimationState creates a state driving sk.
func NewAnimationState(sk *Skeleton) *AnimationState {
	return &AnimationState{TimeScale: 1, skeleton: sk}
}

// Skeleton returns the skeleton this state writes to.
func (s *AnimationState) Skeleton() *Skeleton {
	return s.skeleton
}

// AddListener registers l after any existing listeners.
func (s *AnimationState) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Current returns the entry playing on track, or nil when idle.
func (s *AnimationState) Current(track int) *TrackEntry {
	if track < 0 || track >= len(s.tracks) {
		return nil
	}
	return s.tracks[track]
}

// Tracks returns the number of track slots, idle ones included.
func (s *AnimationState) Tracks() int {
	return len(s.tracks)
}

func (s *AnimationState) ensureTrack(track int) {
	for len(s.tracks) <= track {
		s.tracks = append(s.tracks, nil)
	}
}

func newTrackEntry(track int, clip *AnimationClip, loop bool) *TrackEntry {
	return &TrackEntry{TrackIndex: track, Animation: clip, Looping: loop, Alpha: 1}
}

// SetAnimation replaces whatever plays on track, discarding its queue.
func (s *AnimationState) SetAnimation(track int, clip *AnimationClip, loop bool) *TrackEntry {
	s.ensureTrack(track)
	entry := newTrackEntry(track, clip, loop)
	s.tracks[track] = entry
	s.fireStart(entry)
	return entry
}

// AddAnimation queues clip after the last entry on track. On an idle track
// it starts once delay has elapsed.
func (s *AnimationState) AddAnimation(track int, clip *AnimationClip, loop bool, delay float64) *TrackEntry {
	s.ensureTrack(track)
	entry := newTrackEntry(track, clip, loop)
	entry.Delay = delay
	last := s.tracks[track]
	if last == nil {
		s.tracks[track] = entry
		if delay <= 0 {
			s.fireStart(entry)
		}
		return entry
	}
	for last.Next != nil {
		last = last.Next
	}
	last.Next = entry
	return entry
}

// ClearTrack makes track idle.
func (s *AnimationState) ClearTrack(track int) {
	if track >= 0 && track < len(s.tracks) {
		s.tracks[track] = nil
	}
}

// ClearTracks makes every track idle.
func (s *AnimationState) ClearTracks() {
	s.tracks = s.tracks[:0]
}

// Update advances every track by dt (scaled by TimeScale), fires callbacks
// and applies the result to the skeleton. A non-finite step counts as 0.
func (s *AnimationState) Update(dt float64) {
	dt *= s.TimeScale
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	for i := range s.tracks {
		entry := s.tracks[i]
		if entry == nil || entry.Animation == nil {
			continue
		}
		step := dt
		if entry.Delay > 0 {
			entry.Delay -= step
			if entry.Delay > 0 {
				continue
			}
			step = -entry.Delay
			entry.Delay = 0
			s.fireStart(entry)
		}
		s.advance(entry, step)
		if current := s.tracks[i]; current != nil && current.Delay <= 0 {
			current.Animation.Apply(s.skeleton, current.Time, current.Alpha)
		}
	}
}

func (s *AnimationState) advance(entry *TrackEntry, step float64) {
	clip := entry.Animation
	duration := clip.Duration
	from := entry.LastTime
	entry.Time += step
	defer func() { entry.LastTime = entry.Time }()

	switch {
	case entry.Looping && duration > 0 && entry.Time >= duration:
		clip.eventsIn(from, duration, false, func(ev AnimationEvent) { s.fireEvent(entry, ev) })
		entry.Time = math.Mod(entry.Time, duration)
		clip.eventsIn(0, entry.Time, false, func(ev AnimationEvent) { s.fireEvent(entry, ev) })
		s.fireLoop(entry)
	case !entry.Looping && entry.Time >= duration:
		entry.Time = duration
		if !entry.Complete {
			clip.eventsIn(from, duration, true, func(ev AnimationEvent) { s.fireEvent(entry, ev) })
			entry.Complete = true
			s.fireComplete(entry)
		}
		// a successor queued after completion still takes over
		if next := entry.Next; next != nil {
			s.promote(entry, next)
		}
	default:
		clip.eventsIn(from, entry.Time, false, func(ev AnimationEvent) { s.fireEvent(entry, ev) })
	}
}

// promote replaces the completed entry with its queued successor.
func (s *AnimationState) promote(entry, next *TrackEntry) {
	next.TrackIndex = entry.TrackIndex
	next.Time = 0
	next.LastTime = 0
	next.Complete = false
	s.tracks[entry.TrackIndex] = next
	if next.Delay <= 0 {
		s.fireStart(next)
	}
}

// Apply re-applies every active track at its current time without
// advancing it.
func (s *AnimationState) Apply() {
	for _, entry := range s.tracks {
		if entry == nil || entry.Animation == nil || entry.Delay > 0 {
			continue
		}
		entry.Animation.Apply(s.skeleton, entry.Time, entry.Alpha)
	}
}

func (s *AnimationState) fireStart(entry *TrackEntry) {
	for _, l := range s.listeners {
		if l.Start != nil {
			l.Start(entry)
		}
	}
}

func (s *AnimationState) fireComplete(entry *TrackEntry) {
	for _, l := range s.listeners {
		if l.Complete != nil {
			l.Complete(entry)
		}
	}
}

func (s *AnimationState) fireLoop(entry *TrackEntry) {
	for _, l := range s.listeners {
		if l.Loop != nil {
			l.Loop(entry)
		}
	}
}

func (s *AnimationState) fireEvent(entry *TrackEntry, ev AnimationEvent) {
	for _, l := range s.listeners {
		if l.Event != nil {
			l.Event(entry, ev)
		}
	}
}
