package bonerig

import (
	"fmt"
	"sort"
)

// Skeleton owns a bone tree with a single root plus the slots bound to it.
// It is not safe for concurrent use.
type Skeleton struct {
	Name string

	bones       []*Bone // arena indexed by BoneID, nil once removed
	bonesByName map[string]BoneID
	root        BoneID

	slots       []*Slot
	slotsByName map[string]*Slot
	nextSlotID  int
}

// NewSkeleton creates an empty skeleton.
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{
		Name:        name,
		bonesByName: make(map[string]BoneID),
		root:        NoBone,
		slotsByName: make(map[string]*Slot),
	}
}

// --- bones ---

// AddBone registers bone under parent (NoBone for none) and returns its ID.
// The first parentless bone becomes the root.
func (s *Skeleton) AddBone(bone *Bone, parent BoneID) (BoneID, error) {
	if _, ok := s.bonesByName[bone.Name]; ok {
		return NoBone, fmt.Errorf("add bone %q: %w", bone.Name, ErrDuplicateName)
	}
	if parent != NoBone && s.Bone(parent) == nil {
		return NoBone, fmt.Errorf("add bone %q: parent %d: %w", bone.Name, parent, ErrUnknownBone)
	}
	id := BoneID(len(s.bones))
	bone.ID = id
	bone.parent = NoBone
	bone.children = nil
	s.bones = append(s.bones, bone)
	s.bonesByName[bone.Name] = id
	if parent != NoBone {
		bone.parent = parent
		p := s.bones[parent]
		p.children = append(p.children, id)
	} else if s.root == NoBone {
		s.root = id
	}
	return id, nil
}

// SetParent moves child under parent. Reparenting the root moves the root
// to the topmost ancestor of parent.
func (s *Skeleton) SetParent(child, parent BoneID) error {
	c := s.Bone(child)
	p := s.Bone(parent)
	if c == nil || p == nil {
		return fmt.Errorf("set parent %d -> %d: %w", child, parent, ErrUnknownBone)
	}
	if s.isAncestorOrSelf(child, parent) {
		return fmt.Errorf("set parent %q -> %q: %w", c.Name, p.Name, ErrCycle)
	}
	if c.parent != NoBone {
		s.bones[c.parent].removeChild(child)
	}
	c.parent = parent
	p.children = append(p.children, child)
	if s.root == child {
		top := parent
		for s.bones[top].parent != NoBone {
			top = s.bones[top].parent
		}
		s.root = top
	}
	return nil
}

// isAncestorOrSelf reports whether anc is desc or one of desc's ancestors.
func (s *Skeleton) isAncestorOrSelf(anc, desc BoneID) bool {
	for cur := desc; cur != NoBone; cur = s.bones[cur].parent {
		if cur == anc {
			return true
		}
	}
	return false
}

// RemoveBone removes id and its whole subtree, together with every slot
// bound to a removed bone. It returns the removed bone names so callers can
// prune animation tracks that referenced them.
func (s *Skeleton) RemoveBone(id BoneID) []string {
	b := s.Bone(id)
	if b == nil {
		return nil
	}
	removed := make([]string, 0)
	s.removeSubtree(id, &removed)
	if s.root != NoBone {
		s.UpdateWorldTransforms()
	}
	return removed
}

func (s *Skeleton) removeSubtree(id BoneID, removed *[]string) {
	b := s.bones[id]
	for _, child := range b.Children() { // post-order
		s.removeSubtree(child, removed)
	}
	if b.parent != NoBone {
		s.bones[b.parent].removeChild(id)
		b.parent = NoBone
	}
	for i := 0; i < len(s.slots); {
		if s.slots[i].Bone == id {
			s.removeSlotAt(i)
			continue
		}
		i++
	}
	delete(s.bonesByName, b.Name)
	s.bones[id] = nil
	if s.root == id {
		s.root = NoBone
	}
	*removed = append(*removed, b.Name)
}

// Bone returns the bone for id, or nil.
func (s *Skeleton) Bone(id BoneID) *Bone {
	if id < 0 || int(id) >= len(s.bones) {
		return nil
	}
	return s.bones[id]
}

// FindBone returns the bone called name, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	id, ok := s.bonesByName[name]
	if !ok {
		return nil
	}
	return s.bones[id]
}

// Root returns the root bone, or nil for an empty skeleton.
func (s *Skeleton) Root() *Bone {
	return s.Bone(s.root)
}

// BoneCount returns the number of live bones.
func (s *Skeleton) BoneCount() int {
	return len(s.bonesByName)
}

// BonesInOrder returns the tree in pre-order from the root, so a parent
// always precedes its children.
func (s *Skeleton) BonesInOrder() []*Bone {
	res := make([]*Bone, 0, len(s.bonesByName))
	if s.root == NoBone {
		return res
	}
	stack := []BoneID{s.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b := s.bones[id]
		res = append(res, b)
		for i := len(b.children) - 1; i >= 0; i-- {
			stack = append(stack, b.children[i])
		}
	}
	return res
}

// --- world transforms ---

// UpdateWorldTransforms recomputes every world transform from the root down.
func (s *Skeleton) UpdateWorldTransforms() {
	if s.root != NoBone {
		s.ComputeWorldTransform(s.root)
	}
}

// ComputeWorldTransform recomputes id and then its descendants. The parent's
// world transform must already be current.
func (s *Skeleton) ComputeWorldTransform(id BoneID) {
	b := s.Bone(id)
	if b == nil {
		return
	}
	s.UpdateBoneWorldTransform(id)
	for _, child := range b.children {
		s.ComputeWorldTransform(child)
	}
}

// UpdateBoneWorldTransform recomputes the world transform of id alone,
// leaving its descendants untouched.
func (s *Skeleton) UpdateBoneWorldTransform(id BoneID) {
	b := s.Bone(id)
	if b == nil {
		return
	}
	if b.parent == NoBone {
		b.world = b.Local
		b.world.Rotation = NormalizeAngle(b.world.Rotation)
		return
	}
	parent := s.bones[b.parent]
	b.world = parent.world.MultiplyWithInheritance(b.Local, b.InheritRotation, b.InheritScale)
}

// --- slots ---

// AddSlot registers slot and assigns its ID. A slot without a setup
// attachment captures its current one.
func (s *Skeleton) AddSlot(slot *Slot) error {
	if _, ok := s.slotsByName[slot.Name]; ok {
		return fmt.Errorf("add slot %q: %w", slot.Name, ErrDuplicateName)
	}
	if slot.Bone != NoBone && s.Bone(slot.Bone) == nil {
		return fmt.Errorf("add slot %q: bone %d: %w", slot.Name, slot.Bone, ErrUnknownBone)
	}
	if slot.SetupAttachment == nil && slot.Attachment != nil {
		slot.SetupAttachment = CloneAttachment(slot.Attachment)
	}
	slot.ID = s.nextSlotID
	s.nextSlotID++
	s.slots = append(s.slots, slot)
	s.slotsByName[slot.Name] = slot
	return nil
}

// RemoveSlot removes the slot called name. It reports whether one existed.
func (s *Skeleton) RemoveSlot(name string) bool {
	for i, slot := range s.slots {
		if slot.Name == name {
			s.removeSlotAt(i)
			return true
		}
	}
	return false
}

func (s *Skeleton) removeSlotAt(i int) {
	delete(s.slotsByName, s.slots[i].Name)
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
}

// FindSlot returns the slot called name, or nil.
func (s *Skeleton) FindSlot(name string) *Slot {
	return s.slotsByName[name]
}

// Slot returns the slot with the given ID, or nil.
func (s *Skeleton) Slot(id int) *Slot {
	for _, slot := range s.slots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

// Slots returns the slots in registration order.
func (s *Skeleton) Slots() []*Slot {
	return append([]*Slot(nil), s.slots...)
}

// SlotsInDrawOrder returns the slots sorted by DrawOrder; ties keep
// registration order.
func (s *Skeleton) SlotsInDrawOrder() []*Slot {
	res := s.Slots()
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].DrawOrder < res[j].DrawOrder
	})
	return res
}

// --- setup pose ---

// SetBonesToSetupPose copies every bone's setup transform into its local one.
func (s *Skeleton) SetBonesToSetupPose() {
	for _, b := range s.bones {
		if b != nil {
			b.SetToSetupPose()
		}
	}
}

// SetSlotsToSetupPose restores slot colors and attachments.
func (s *Skeleton) SetSlotsToSetupPose() {
	for _, slot := range s.slots {
		slot.SetToSetupPose()
	}
}

// SetToSetupPose restores bones and slots.
func (s *Skeleton) SetToSetupPose() {
	s.SetBonesToSetupPose()
	s.SetSlotsToSetupPose()
}

// CaptureSetupPose stores the current local transforms and slot state as the
// setup pose.
func (s *Skeleton) CaptureSetupPose() {
	for _, b := range s.bones {
		if b != nil {
			b.Setup = b.Local
		}
	}
	for _, slot := range s.slots {
		slot.SetupColor = slot.Color
		slot.SetupAttachment = CloneAttachment(slot.Attachment)
	}
}
