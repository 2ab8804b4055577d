package glimmer

// maxFrameDelta caps the time fed into the physics accumulator in one frame,
// preventing a spiral of death after a long stall (window drag, debugger).
const maxFrameDelta = 0.1

// Sim advances a scene. It owns the session state that exists only while
// playing: the physics world, per-emitter particle pools, resolved animators,
// and the script host. Everything runs synchronously inside one frame tick.
//
// Per-frame order: physics sync, particles, animations, scripts.
type Sim struct {
	scene   *Scene
	logger  *Logger
	scripts *ScriptHost

	playing     bool
	accumulator float64

	world      *physicsWorld
	pools      map[string]*emitterPool
	animators  []*animator
	lastEntity int // entity count at the last animator resolve
}

// NewSim creates a simulation for the scene. scripts may be nil to disable
// script execution entirely (some tooling hosts do this).
func NewSim(scene *Scene, logger *Logger, scripts *ScriptHost) *Sim {
	return &Sim{
		scene:   scene,
		logger:  logger,
		scripts: scripts,
		pools:   make(map[string]*emitterPool),
	}
}

// Playing reports whether the simulation is running.
func (s *Sim) Playing() bool { return s.playing }

// Scene returns the scene the simulation drives.
func (s *Sim) Scene() *Scene { return s.scene }

// Play starts the session: rigid bodies are created for physics-enabled
// entities and animation property paths are resolved. No-op when already
// playing.
func (s *Sim) Play() {
	if s.playing {
		return
	}
	s.playing = true
	s.accumulator = 0
	s.world = newPhysicsWorld(s.scene)
	s.resolveAnimators()
}

// Stop ends the session and tears down all physics bodies. The transform
// last written by physics stays on each entity; the pre-play pose is not
// restored. Live particles are dropped.
func (s *Sim) Stop() {
	if !s.playing {
		return
	}
	s.playing = false
	s.world = nil
	s.animators = nil
	clear(s.pools)
}

// resolveAnimators builds one animator per animation, binding property paths
// to typed accessors once instead of re-walking the dotted path every frame.
func (s *Sim) resolveAnimators() {
	s.animators = s.animators[:0]
	for _, e := range s.scene.Entities {
		for i := range e.Animations {
			s.animators = append(s.animators, newAnimator(e, &e.Animations[i]))
		}
	}
	s.lastEntity = len(s.scene.Entities)
}

// Step advances the scene by dt seconds. Runs only while playing.
//
// Physics uses a capped fixed-timestep accumulator: dt (clamped to
// maxFrameDelta) is added, then the space is advanced in fixedTimestep
// increments while the accumulator allows, the remainder carrying over to
// the next frame. Particles, animations, and scripts run once per frame with
// the frame dt.
func (s *Sim) Step(in *Input, dt float64) {
	if !s.playing {
		return
	}

	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	fixed := s.scene.FixedTimestep()
	s.accumulator += dt
	for s.accumulator >= fixed {
		s.world.step(s.scene, fixed)
		s.accumulator -= fixed
	}

	s.stepParticles(dt)

	for _, a := range s.animators {
		a.update(dt)
	}

	if s.scripts != nil {
		s.scripts.Run(s.scene, in, dt)
		// Scripts may have instantiated prefabs; bind their animations too.
		if len(s.scene.Entities) != s.lastEntity {
			s.resolveAnimators()
		}
	}
}

// stepParticles ages, moves, and emits particles for every emitter-bearing
// entity. Pools are created lazily so entities spawned mid-session (prefab
// instantiation from scripts) emit from their first frame.
func (s *Sim) stepParticles(dt float64) {
	for _, e := range s.scene.Entities {
		if e.Emitter == nil {
			continue
		}
		pool, ok := s.pools[e.ID]
		if !ok {
			pool = newEmitterPool(e.Emitter)
			s.pools[e.ID] = pool
		}
		pool.update(e.Emitter, e.Transform.Position, dt)
	}
}

// Pool returns the live particle pool for an entity, or nil. The renderer
// reads this; pools exist only while playing.
func (s *Sim) Pool(entityID string) *emitterPool {
	return s.pools[entityID]
}
